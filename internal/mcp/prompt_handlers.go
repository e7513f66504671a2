package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/promptgate/promptgate/internal/hub"
	"github.com/promptgate/promptgate/internal/promptfile"
	"github.com/promptgate/promptgate/internal/server"
)

func handlePullPrompt(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.Hub == nil {
		return mcp.NewToolResultError("hub client is not configured"), nil
	}

	promptName, _ := request.GetArguments()["prompt"].(string)
	if promptName == "" {
		return mcp.NewToolResultError("prompt is required"), nil
	}

	prompt, err := sc.Hub.Pull(ctx, promptName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to pull prompt: %v", err)), nil
	}

	data, err := json.MarshalIndent(prompt, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal prompt: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handlePushPrompt(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.Hub == nil {
		return mcp.NewToolResultError("hub client is not configured"), nil
	}

	args := request.GetArguments()

	fileArg, _ := args["file"].(string)
	path, err := resolvePathWithinBase(sc.PromptsDir, fileArg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid file: %v", err)), nil
	}

	file, err := promptfile.Load(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load prompt file: %v", err)), nil
	}

	only, _ := args["prompt"].(string)
	public, _ := args["public"].(bool)

	type pushed struct {
		Prompt string `json:"prompt"`
		URL    string `json:"url"`
	}

	var results []pushed
	for name, spec := range file {
		if only != "" && name != only {
			continue
		}
		if problems := promptfile.Validate(spec); len(problems) > 0 {
			return mcp.NewToolResultError(fmt.Sprintf("prompt %q failed validation: %s", name, strings.Join(problems, "; "))), nil
		}
		messages, err := promptfile.BuildMessages(spec)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("prompt %q: %v", name, err)), nil
		}
		url, err := sc.Hub.Push(ctx, name, messages, hub.PushOptions{
			Public:      public,
			Description: promptfile.PushDescription(spec),
			Tags:        spec.Tags,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to push prompt %q: %v", name, err)), nil
		}
		results = append(results, pushed{Prompt: name, URL: url})
	}

	if len(results) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no prompt named %q in %s", only, fileArg)), nil
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleListPrompts(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	paths, err := promptfile.List(sc.PromptsDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list prompts: %v", err)), nil
	}

	type promptInfo struct {
		File        string   `json:"file"`
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Version     string   `json:"version"`
		Techniques  []string `json:"techniques,omitempty"`
	}

	var prompts []promptInfo
	for _, path := range paths {
		file, err := promptfile.Load(path)
		if err != nil {
			continue
		}
		for name, spec := range file {
			prompts = append(prompts, promptInfo{
				File:        filepath.Base(path),
				Name:        name,
				Description: spec.Description,
				Version:     spec.Version,
				Techniques:  spec.Techniques,
			})
		}
	}

	data, err := json.MarshalIndent(prompts, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal prompts: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
