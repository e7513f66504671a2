package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Supported provider identifiers.
const (
	ProviderOpenAI = "openai"
	ProviderGoogle = "google"
)

// Message roles used in chat requests. Prompt templates pulled from the hub
// may use the "human"/"ai" aliases; NormalizeRole maps them onto these.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client abstracts a chat-completion provider.
type Client interface {
	// ChatCompletion sends a chat completion request and returns the response.
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// Message is a single role-tagged chat message.
type Message struct {
	Role    string
	Content string
}

// ChatRequest is a provider-agnostic chat request.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature *float64
}

// ChatResponse holds the result of a chat completion.
type ChatResponse struct {
	Content string
}

// NormalizeRole maps hub/YAML role aliases onto the canonical roles.
// Unknown roles are returned unchanged.
func NormalizeRole(role string) string {
	switch role {
	case "human", RoleUser:
		return RoleUser
	case "ai", RoleAssistant:
		return RoleAssistant
	case RoleSystem:
		return RoleSystem
	default:
		return role
	}
}

// OpenAIClient implements Client using an OpenAI-compatible API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature *float64
}

// NewOpenAIClient creates a new OpenAI-compatible client.
func NewOpenAIClient(opts ...Option) *OpenAIClient {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	config := openai.DefaultConfig(cfg.apiKey)
	if cfg.baseURL != "" {
		config.BaseURL = cfg.baseURL
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(config),
		model:       cfg.model,
		temperature: cfg.temperature,
	}
}

// ChatCompletion sends a chat completion request.
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	req = c.applyDefaults(req)

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openAIRole(m.Role),
			Content: m.Content,
		})
	}

	oreq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
	}
	if req.Temperature != nil {
		oreq.Temperature = float32(*req.Temperature)
	}

	resp, err := c.client.CreateChatCompletion(ctx, oreq)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}

	return &ChatResponse{
		Content: resp.Choices[0].Message.Content,
	}, nil
}

// applyDefaults applies client-level defaults to a request where
// the request does not specify its own values.
func (c *OpenAIClient) applyDefaults(req ChatRequest) ChatRequest {
	if req.Model == "" && c.model != "" {
		req.Model = c.model
	}
	if req.Temperature == nil && c.temperature != nil {
		req.Temperature = c.temperature
	}
	return req
}

func openAIRole(role string) string {
	switch NormalizeRole(role) {
	case RoleSystem:
		return openai.ChatMessageRoleSystem
	case RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
