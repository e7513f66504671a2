package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/promptgate/promptgate/internal/dataset"
	"github.com/promptgate/promptgate/internal/evaluator"
	"github.com/promptgate/promptgate/internal/server"
)

func handleEvaluatePrompt(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.Hub == nil {
		return mcp.NewToolResultError("hub client is not configured"), nil
	}
	if sc.Candidate == nil || sc.Judge == nil {
		return mcp.NewToolResultError("LLM clients are not configured"), nil
	}

	args := request.GetArguments()

	promptName, _ := args["prompt"].(string)
	if promptName == "" {
		return mcp.NewToolResultError("prompt is required"), nil
	}

	datasetPath := sc.DatasetPath
	if path, ok := args["dataset"].(string); ok && path != "" {
		datasetPath = path
	}

	examples, err := dataset.Load(datasetPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load dataset: %v", err)), nil
	}

	pipeline := evaluator.New(sc.Hub, sc.Candidate, sc.Judge, sc.Limiter, sc.Model)
	if extended, ok := args["extended"].(bool); ok {
		pipeline.SetExtended(extended)
	}

	report, err := pipeline.Evaluate(ctx, promptName, examples)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal report: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
