package hub

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/promptgate/promptgate/internal/llm"
)

// TemplateMessage is one role-tagged message template within a prompt.
// Templates reference inputs with {placeholder} variables.
type TemplateMessage struct {
	Role     string `json:"role" yaml:"role"`
	Template string `json:"template" yaml:"template"`
}

// Prompt is a named, versioned prompt template as stored in the hub.
type Prompt struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Tags        []string          `json:"tags" yaml:"tags,omitempty"`
	CommitHash  string            `json:"commit_hash" yaml:"commit_hash,omitempty"`
	Messages    []TemplateMessage `json:"messages" yaml:"messages"`
}

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// InputVariables returns the distinct placeholder names referenced by the
// prompt's templates, in order of first appearance.
func (p *Prompt) InputVariables() []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range p.Messages {
		for _, match := range placeholderPattern.FindAllStringSubmatch(m.Template, -1) {
			if !seen[match[1]] {
				seen[match[1]] = true
				names = append(names, match[1])
			}
		}
	}
	return names
}

// Format substitutes inputs into the prompt's templates and returns the
// resulting chat messages. Every placeholder must have a value; an
// unresolved placeholder would silently evaluate a different prompt than
// the one under test.
func (p *Prompt) Format(inputs map[string]string) ([]llm.Message, error) {
	messages := make([]llm.Message, 0, len(p.Messages))
	for i, m := range p.Messages {
		content := m.Template
		for _, match := range placeholderPattern.FindAllStringSubmatch(m.Template, -1) {
			name := match[1]
			value, ok := inputs[name]
			if !ok {
				return nil, fmt.Errorf("message %d references undefined input variable %q", i+1, name)
			}
			content = strings.ReplaceAll(content, "{"+name+"}", value)
		}
		messages = append(messages, llm.Message{
			Role:    llm.NormalizeRole(m.Role),
			Content: content,
		})
	}
	return messages, nil
}

// SystemAndUser extracts the system and user templates from the prompt for
// saving to a normalized YAML file. Role tags are tried first; when they are
// missing the first template is treated as the system prompt and the first
// remaining template as the user prompt.
func (p *Prompt) SystemAndUser() (system, user string) {
	for _, m := range p.Messages {
		role := strings.ToLower(m.Role)
		switch {
		case strings.Contains(role, "system") && system == "":
			system = m.Template
		case (strings.Contains(role, "human") || strings.Contains(role, "user")) && user == "":
			user = m.Template
		}
	}

	for _, m := range p.Messages {
		if m.Template == "" {
			continue
		}
		if system == "" {
			system = m.Template
			continue
		}
		if user == "" && m.Template != system {
			user = m.Template
		}
	}
	return system, user
}
