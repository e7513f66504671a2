package promptfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptgate/promptgate/internal/hub"
	"github.com/promptgate/promptgate/internal/llm"
)

const sampleYAML = `bug_to_user_story_v2:
  description: Convert bug reports into user stories.
  version: v2
  system_prompt: You are a senior product manager.
  user_prompt: "Bug report:\n---\n{bug_report}\n---"
  examples:
    - input: "Login button unresponsive on mobile"
      output: "As a mobile user, I want the login button to respond..."
    - input: "Cart total wrong after coupon"
      output: "As a shopper, I want coupon discounts applied correctly..."
  techniques_applied:
    - few-shot
    - role-prompting
  tags:
    - bug-analysis
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompts.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	file, err := Load(writeFile(t, sampleYAML))
	require.NoError(t, err)

	spec, ok := file["bug_to_user_story_v2"]
	require.True(t, ok)
	assert.Equal(t, "v2", spec.Version)
	assert.Len(t, spec.Examples, 2)
	assert.Equal(t, []string{"few-shot", "role-prompting"}, spec.Techniques)
}

func TestLoadEmptyFile(t *testing.T) {
	_, err := Load(writeFile(t, ""))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "prompts.yml")
	original := File{
		"p1": {Description: "d", Version: "v1", SystemPrompt: "s", UserPrompt: "u"},
	}

	require.NoError(t, Save(path, original))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, original["p1"].SystemPrompt, loaded["p1"].SystemPrompt)
}

func TestValidateOK(t *testing.T) {
	file, err := Load(writeFile(t, sampleYAML))
	require.NoError(t, err)

	assert.Empty(t, Validate(file["bug_to_user_story_v2"]))
}

func TestValidateProblems(t *testing.T) {
	tests := []struct {
		name string
		spec *Spec
		want string
	}{
		{
			name: "no prompts at all",
			spec: &Spec{Description: "d", Version: "v"},
			want: "must define",
		},
		{
			name: "todo marker",
			spec: &Spec{
				Description: "d", Version: "v",
				SystemPrompt: "You are [TODO]", UserPrompt: "u",
				Techniques: []string{"a", "b"},
			},
			want: "[TODO]",
		},
		{
			name: "missing version",
			spec: &Spec{
				Description:  "d",
				SystemPrompt: "s", UserPrompt: "u",
				Techniques: []string{"a", "b"},
			},
			want: "version",
		},
		{
			name: "too few techniques",
			spec: &Spec{
				Description: "d", Version: "v",
				SystemPrompt: "s", UserPrompt: "u",
				Techniques: []string{"only-one"},
			},
			want: "techniques",
		},
		{
			name: "invalid message role",
			spec: &Spec{
				Description: "d", Version: "v",
				Messages:   []hub.TemplateMessage{{Role: "narrator", Template: "x"}},
				Techniques: []string{"a", "b"},
			},
			want: "invalid role",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.spec)
			require.NotEmpty(t, errs)
			found := false
			for _, e := range errs {
				if strings.Contains(e, tt.want) {
					found = true
				}
			}
			assert.True(t, found, "expected a validation error mentioning %q, got %v", tt.want, errs)
		})
	}
}

func TestBuildMessagesFromSystemUser(t *testing.T) {
	file, err := Load(writeFile(t, sampleYAML))
	require.NoError(t, err)

	messages, err := BuildMessages(file["bug_to_user_story_v2"])
	require.NoError(t, err)

	// system + 2 few-shot pairs + final user template.
	require.Len(t, messages, 6)
	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Equal(t, llm.RoleUser, messages[1].Role)
	assert.Equal(t, llm.RoleAssistant, messages[2].Role)
	assert.Equal(t, llm.RoleUser, messages[5].Role)
	assert.Contains(t, messages[5].Template, "{bug_report}")
}

func TestBuildMessagesSkipsIncompleteFewShots(t *testing.T) {
	spec := &Spec{
		SystemPrompt: "s",
		UserPrompt:   "u",
		Examples: []FewShot{
			{Input: "complete", Output: "pair"},
			{Input: "missing output"},
		},
	}

	messages, err := BuildMessages(spec)
	require.NoError(t, err)
	assert.Len(t, messages, 4)
}

func TestBuildMessagesLegacyExamples(t *testing.T) {
	spec := &Spec{
		SystemPrompt:   "s",
		UserPrompt:     "u",
		LegacyExamples: []FewShot{{Input: "in", Output: "out"}},
	}

	messages, err := BuildMessages(spec)
	require.NoError(t, err)
	assert.Len(t, messages, 4)
}

func TestBuildMessagesExplicit(t *testing.T) {
	spec := &Spec{
		Messages: []hub.TemplateMessage{
			{Role: "system", Template: "s"},
			{Role: "human", Template: "{q}"},
		},
	}

	messages, err := BuildMessages(spec)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, llm.RoleUser, messages[1].Role)
}

func TestBuildMessagesRejectsInvalidRole(t *testing.T) {
	spec := &Spec{
		Messages: []hub.TemplateMessage{{Role: "narrator", Template: "x"}},
	}

	_, err := BuildMessages(spec)
	require.Error(t, err)
}

func TestBuildMessagesRejectsMissingPrompts(t *testing.T) {
	_, err := BuildMessages(&Spec{SystemPrompt: "only system"})
	require.Error(t, err)
}

func TestPushDescription(t *testing.T) {
	assert.Equal(t, "Optimized prompt", PushDescription(&Spec{}))
	assert.Equal(t, "Base", PushDescription(&Spec{Description: "Base"}))
	assert.Equal(t, "Base | Techniques: a, b",
		PushDescription(&Spec{Description: "Base", Techniques: []string{"a", "b"}}))
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yml"), []byte("x:\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("x:\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	files, err := List(dir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
