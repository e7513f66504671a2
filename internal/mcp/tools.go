package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/promptgate/promptgate/internal/server"
)

// RegisterTools registers all MCP tools with the server.
func RegisterTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// evaluate_prompt
	evalTool := mcp.NewTool("evaluate_prompt",
		mcp.WithDescription("Evaluate a hub prompt against a JSONL dataset using an LLM judge and report whether it passes the quality gate"),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("Name of the prompt to evaluate (e.g. 'bug_to_user_story_v2')"),
		),
		mcp.WithString("dataset",
			mcp.Description("Path to a JSONL dataset (default: the configured dataset)"),
		),
		mcp.WithBoolean("extended",
			mcp.Description("Also score the user-story specific metrics (tone, acceptance criteria, format, completeness)"),
		),
	)
	s.AddTool(evalTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleEvaluatePrompt(ctx, request, sc)
	})

	// pull_prompt
	pullTool := mcp.NewTool("pull_prompt",
		mcp.WithDescription("Pull the latest version of a prompt from the hub"),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("Name of the prompt to pull"),
		),
	)
	s.AddTool(pullTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handlePullPrompt(ctx, request, sc)
	})

	// push_prompt
	pushTool := mcp.NewTool("push_prompt",
		mcp.WithDescription("Validate a local prompt YAML file and publish its prompts to the hub"),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Prompt YAML file, relative to the prompts directory"),
		),
		mcp.WithString("prompt",
			mcp.Description("Push only this prompt from the file (default: all)"),
		),
		mcp.WithBoolean("public",
			mcp.Description("Publish the prompt publicly (default: private)"),
		),
	)
	s.AddTool(pushTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handlePushPrompt(ctx, request, sc)
	})

	// list_prompts
	listTool := mcp.NewTool("list_prompts",
		mcp.WithDescription("List local prompt YAML files with metadata"),
	)
	s.AddTool(listTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListPrompts(ctx, request, sc)
	})

	return nil
}
