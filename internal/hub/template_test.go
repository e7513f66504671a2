package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptgate/promptgate/internal/llm"
)

func samplePrompt() *Prompt {
	return &Prompt{
		Name: "bug_to_user_story_v2",
		Messages: []TemplateMessage{
			{Role: "system", Template: "You are a senior product manager."},
			{Role: "human", Template: "Bug report:\n---\n{bug_report}\n---"},
		},
	}
}

func TestInputVariables(t *testing.T) {
	p := &Prompt{
		Messages: []TemplateMessage{
			{Role: "system", Template: "Context: {context} and {context} again"},
			{Role: "human", Template: "{question} about {context}"},
		},
	}

	assert.Equal(t, []string{"context", "question"}, p.InputVariables())
}

func TestFormat(t *testing.T) {
	p := samplePrompt()

	messages, err := p.Format(map[string]string{"bug_report": "cart button broken"})
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Equal(t, "You are a senior product manager.", messages[0].Content)
	assert.Equal(t, llm.RoleUser, messages[1].Role)
	assert.Equal(t, "Bug report:\n---\ncart button broken\n---", messages[1].Content)
}

func TestFormatMissingVariable(t *testing.T) {
	p := samplePrompt()

	_, err := p.Format(map[string]string{"unrelated": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bug_report")
}

func TestFormatNormalizesRoles(t *testing.T) {
	p := &Prompt{
		Messages: []TemplateMessage{
			{Role: "ai", Template: "a canned assistant turn"},
		},
	}

	messages, err := p.Format(nil)
	require.NoError(t, err)
	assert.Equal(t, llm.RoleAssistant, messages[0].Role)
}

func TestSystemAndUserByRole(t *testing.T) {
	system, user := samplePrompt().SystemAndUser()
	assert.Equal(t, "You are a senior product manager.", system)
	assert.Equal(t, "Bug report:\n---\n{bug_report}\n---", user)
}

func TestSystemAndUserFallsBackToOrder(t *testing.T) {
	p := &Prompt{
		Messages: []TemplateMessage{
			{Role: "", Template: "first template"},
			{Role: "", Template: "second template"},
		},
	}

	system, user := p.SystemAndUser()
	assert.Equal(t, "first template", system)
	assert.Equal(t, "second template", user)
}

func TestSystemAndUserSingleTemplate(t *testing.T) {
	p := &Prompt{
		Messages: []TemplateMessage{
			{Role: "", Template: "only template"},
		},
	}

	system, user := p.SystemAndUser()
	assert.Equal(t, "only template", system)
	assert.Empty(t, user)
}
