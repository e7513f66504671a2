package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptgate/promptgate/internal/hub"
	"github.com/promptgate/promptgate/internal/server"
)

const samplePromptYAML = `bug_to_user_story_v2:
  description: Convert bug reports into user stories.
  version: v2
  system_prompt: You are a senior product manager.
  user_prompt: "Bug report: {bug_report}"
  techniques_applied:
    - few-shot
    - role-prompting
`

func requestWithArgs(args map[string]interface{}) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args
	return request
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	content, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return content.Text
}

func TestHandleEvaluatePromptMissingPrompt(t *testing.T) {
	sc := &server.ServerContext{Hub: hub.NewClient("http://unused", "k", "ws")}

	result, err := handleEvaluatePrompt(context.Background(), requestWithArgs(map[string]interface{}{}), sc)
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), "LLM clients are not configured")
}

func TestHandleEvaluatePromptNoHub(t *testing.T) {
	sc := &server.ServerContext{}

	result, err := handleEvaluatePrompt(context.Background(), requestWithArgs(map[string]interface{}{
		"prompt": "p",
	}), sc)
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), "hub client is not configured")
}

func TestHandlePullPromptMissingName(t *testing.T) {
	sc := &server.ServerContext{Hub: hub.NewClient("http://unused", "k", "ws")}

	result, err := handlePullPrompt(context.Background(), requestWithArgs(map[string]interface{}{}), sc)
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), "prompt is required")
}

func TestHandlePullPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(hub.Prompt{
			Name:     "p",
			Messages: []hub.TemplateMessage{{Role: "system", Template: "s"}},
		})
	}))
	defer srv.Close()

	sc := &server.ServerContext{Hub: hub.NewClient(srv.URL, "k", "ws")}

	result, err := handlePullPrompt(context.Background(), requestWithArgs(map[string]interface{}{
		"prompt": "p",
	}), sc)
	require.NoError(t, err)

	var prompt hub.Prompt
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &prompt))
	assert.Equal(t, "p", prompt.Name)
}

func TestHandlePushPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"url": "https://hub.example.com/ws/bug_to_user_story_v2"}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prompts.yml"), []byte(samplePromptYAML), 0o644))

	sc := &server.ServerContext{
		Hub:        hub.NewClient(srv.URL, "k", "ws"),
		PromptsDir: dir,
	}

	result, err := handlePushPrompt(context.Background(), requestWithArgs(map[string]interface{}{
		"file": "prompts.yml",
	}), sc)
	require.NoError(t, err)

	text := textContent(t, result)
	assert.Contains(t, text, "bug_to_user_story_v2")
	assert.Contains(t, text, "https://hub.example.com/ws/bug_to_user_story_v2")
}

func TestHandlePushPromptRejectsEscapingPath(t *testing.T) {
	sc := &server.ServerContext{
		Hub:        hub.NewClient("http://unused", "k", "ws"),
		PromptsDir: t.TempDir(),
	}

	result, err := handlePushPrompt(context.Background(), requestWithArgs(map[string]interface{}{
		"file": "../../etc/passwd",
	}), sc)
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), "invalid file")
}

func TestHandlePushPromptUnknownName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prompts.yml"), []byte(samplePromptYAML), 0o644))

	sc := &server.ServerContext{
		Hub:        hub.NewClient("http://unused", "k", "ws"),
		PromptsDir: dir,
	}

	result, err := handlePushPrompt(context.Background(), requestWithArgs(map[string]interface{}{
		"file":   "prompts.yml",
		"prompt": "does_not_exist",
	}), sc)
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), "no prompt named")
}

func TestHandleListPrompts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prompts.yml"), []byte(samplePromptYAML), 0o644))

	sc := &server.ServerContext{PromptsDir: dir}

	result, err := handleListPrompts(context.Background(), mcp.CallToolRequest{}, sc)
	require.NoError(t, err)

	var prompts []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &prompts))
	require.Len(t, prompts, 1)
	assert.Equal(t, "bug_to_user_story_v2", prompts[0]["name"])
	assert.Equal(t, "v2", prompts[0]["version"])
}

func TestResolvePathWithinBase(t *testing.T) {
	dir := t.TempDir()

	path, err := resolvePathWithinBase(dir, "prompts.yml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "prompts.yml"), path)

	_, err = resolvePathWithinBase(dir, "../outside.yml")
	require.Error(t, err)

	_, err = resolvePathWithinBase(dir, "")
	require.Error(t, err)
}
