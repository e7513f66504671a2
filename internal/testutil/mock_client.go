// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/promptgate/promptgate/internal/llm"
)

// MockLLMClient is a configurable mock for llm.Client used across test
// packages. Matching is done on the last user message, by substring.
type MockLLMClient struct {
	// Responses maps substrings of the last user message to canned responses.
	Responses map[string]string

	// DefaultResponse is returned when no key in Responses matches.
	DefaultResponse string

	// Errors is a queue of errors returned before any response, one per
	// call. A nil entry means the call succeeds. Used for retry tests.
	Errors []error

	mu          sync.Mutex
	calls       int
	lastRequest llm.ChatRequest
}

func (m *MockLLMClient) ChatCompletion(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := m.calls
	m.calls++
	m.lastRequest = req

	if call < len(m.Errors) && m.Errors[call] != nil {
		return nil, m.Errors[call]
	}

	user := lastUserMessage(req.Messages)
	for key, resp := range m.Responses {
		if strings.Contains(user, key) {
			return &llm.ChatResponse{Content: resp}, nil
		}
	}

	if m.DefaultResponse != "" {
		return &llm.ChatResponse{Content: m.DefaultResponse}, nil
	}

	return &llm.ChatResponse{Content: "mock response"}, nil
}

// Calls reports the number of ChatCompletion invocations.
func (m *MockLLMClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent ChatRequest for inspection.
func (m *MockLLMClient) LastRequest() llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

func lastUserMessage(messages []llm.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
