package cmd

import (
	"context"
	"fmt"

	"github.com/promptgate/promptgate/internal/config"
	"github.com/promptgate/promptgate/internal/hub"
	"github.com/promptgate/promptgate/internal/llm"
)

// newLLMClient creates the chat client for the configured provider. One
// client serves both candidate generation and judging; the model is chosen
// per request.
func newLLMClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	switch cfg.Provider {
	case llm.ProviderOpenAI:
		return llm.NewOpenAIClient(llm.WithAPIKey(cfg.APIKey)), nil
	case llm.ProviderGoogle:
		return llm.NewGeminiClient(ctx, llm.WithAPIKey(cfg.APIKey))
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

func newHubClient(cfg *config.Config) *hub.Client {
	return hub.NewClient(cfg.HubAPIURL, cfg.HubAPIKey, cfg.HubWorkspace)
}
