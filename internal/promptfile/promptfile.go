// Package promptfile reads and writes local prompt YAML files, the on-disk
// form prompts take between hub pulls and pushes.
package promptfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/promptgate/promptgate/internal/hub"
	"github.com/promptgate/promptgate/internal/llm"
)

// File maps prompt names to their specifications. A prompt YAML file holds
// one or more named prompts at the top level.
type File map[string]*Spec

// FewShot is one worked example embedded in a prompt.
type FewShot struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

// Spec is a single prompt specification. Either Messages is set (explicit
// role-tagged templates) or SystemPrompt/UserPrompt are, optionally with
// few-shot examples expanded into alternating user/assistant turns.
type Spec struct {
	Description  string                `yaml:"description,omitempty"`
	Version      string                `yaml:"version,omitempty"`
	SystemPrompt string                `yaml:"system_prompt,omitempty"`
	UserPrompt   string                `yaml:"user_prompt,omitempty"`
	Messages     []hub.TemplateMessage `yaml:"messages,omitempty"`
	Examples     []FewShot             `yaml:"examples,omitempty"`
	// few_shot_examples is the legacy spelling of examples.
	LegacyExamples []FewShot      `yaml:"few_shot_examples,omitempty"`
	Techniques     []string       `yaml:"techniques_applied,omitempty"`
	Tags           []string       `yaml:"tags,omitempty"`
	Metadata       map[string]any `yaml:"metadata,omitempty"`
	CreatedAt      string         `yaml:"created_at,omitempty"`
}

// fewShots returns the examples, falling back to the legacy schema.
func (s *Spec) fewShots() []FewShot {
	if len(s.Examples) > 0 {
		return s.Examples
	}
	return s.LegacyExamples
}

// Load parses a prompt YAML file.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", path, err)
	}
	if len(file) == 0 {
		return nil, fmt.Errorf("prompt file %s defines no prompts", path)
	}
	return file, nil
}

// Save writes a prompt file, creating parent directories as needed.
func Save(path string, file File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create prompt directory: %w", err)
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal prompt file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write prompt file: %w", err)
	}
	return nil
}

// Validate checks the structural requirements a prompt must meet before it
// can be pushed. It returns every problem found, not just the first.
func Validate(spec *Spec) []string {
	var errs []string

	hasMessages := len(spec.Messages) > 0
	hasSystemUser := spec.SystemPrompt != "" && spec.UserPrompt != ""
	if !hasMessages && !hasSystemUser {
		errs = append(errs, "prompt must define 'messages' or both 'system_prompt' and 'user_prompt'")
		return errs
	}

	if hasMessages {
		for i, m := range spec.Messages {
			if strings.TrimSpace(m.Role) == "" || strings.TrimSpace(m.Template) == "" {
				errs = append(errs, fmt.Sprintf("message %d must have a non-empty role and template", i+1))
				continue
			}
			switch llm.NormalizeRole(strings.ToLower(m.Role)) {
			case llm.RoleSystem, llm.RoleUser, llm.RoleAssistant:
			default:
				errs = append(errs, fmt.Sprintf("message %d has invalid role %q", i+1, m.Role))
			}
		}
	}

	if strings.Contains(spec.SystemPrompt, "[TODO]") || strings.Contains(spec.UserPrompt, "[TODO]") {
		errs = append(errs, "prompt still contains [TODO] markers")
	}
	if spec.Description == "" {
		errs = append(errs, "description is required")
	}
	if spec.Version == "" {
		errs = append(errs, "version is required")
	}
	if len(spec.Techniques) < 2 {
		errs = append(errs, fmt.Sprintf("at least 2 documented techniques are required, found %d", len(spec.Techniques)))
	}

	return errs
}

// BuildMessages turns a spec into the role-tagged message templates pushed
// to the hub. Few-shot examples become alternating user/assistant turns
// between the system prompt and the final user template; incomplete
// examples are skipped.
func BuildMessages(spec *Spec) ([]hub.TemplateMessage, error) {
	if len(spec.Messages) > 0 {
		messages := make([]hub.TemplateMessage, 0, len(spec.Messages))
		for i, m := range spec.Messages {
			role := llm.NormalizeRole(strings.ToLower(strings.TrimSpace(m.Role)))
			template := strings.TrimSpace(m.Template)
			if role == "" || template == "" {
				return nil, fmt.Errorf("message %d must have a non-empty role and template", i+1)
			}
			switch role {
			case llm.RoleSystem, llm.RoleUser, llm.RoleAssistant:
			default:
				return nil, fmt.Errorf("message %d has invalid role %q", i+1, m.Role)
			}
			messages = append(messages, hub.TemplateMessage{Role: role, Template: template})
		}
		return messages, nil
	}

	system := strings.TrimSpace(spec.SystemPrompt)
	user := strings.TrimSpace(spec.UserPrompt)
	if system == "" || user == "" {
		return nil, fmt.Errorf("prompt must define non-empty 'system_prompt' and 'user_prompt'")
	}

	messages := []hub.TemplateMessage{{Role: llm.RoleSystem, Template: system}}
	for _, ex := range spec.fewShots() {
		input := strings.TrimSpace(ex.Input)
		output := strings.TrimSpace(ex.Output)
		if input == "" || output == "" {
			continue
		}
		messages = append(messages,
			hub.TemplateMessage{Role: llm.RoleUser, Template: input},
			hub.TemplateMessage{Role: llm.RoleAssistant, Template: output},
		)
	}
	messages = append(messages, hub.TemplateMessage{Role: llm.RoleUser, Template: user})

	return messages, nil
}

// PushDescription combines the description and documented techniques into
// the hub description string.
func PushDescription(spec *Spec) string {
	description := strings.TrimSpace(spec.Description)
	if description == "" {
		description = "Optimized prompt"
	}
	if len(spec.Techniques) > 0 {
		description = description + " | Techniques: " + strings.Join(spec.Techniques, ", ")
	}
	return description
}

// List returns the prompt YAML files (*.yml, *.yaml) in dir, sorted by name.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yml", ".yaml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}
