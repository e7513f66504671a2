package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient implements Client using the Google Gen AI SDK.
//
// System messages are not part of the Gemini content list; they are
// concatenated into the request's system instruction.
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature *float64
}

// NewGeminiClient creates a client for the Gemini API.
func NewGeminiClient(ctx context.Context, opts ...Option) (*GeminiClient, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		model:       cfg.model,
		temperature: cfg.temperature,
	}, nil
}

// ChatCompletion sends a chat completion request to the Gemini API.
func (c *GeminiClient) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	temperature := req.Temperature
	if temperature == nil {
		temperature = c.temperature
	}

	config := &genai.GenerateContentConfig{}
	if temperature != nil {
		t := float32(*temperature)
		config.Temperature = &t
	}

	var system []string
	var contents []*genai.Content
	for _, m := range req.Messages {
		switch NormalizeRole(m.Role) {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: m.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: m.Content}},
			})
		}
	}
	if len(system) > 0 {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}},
		}
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini chat completion failed: %w", err)
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.Text != "" {
				b.WriteString(part.Text)
			}
		}
		break
	}

	if b.Len() == 0 {
		return nil, fmt.Errorf("gemini returned no text content")
	}

	return &ChatResponse{Content: b.String()}, nil
}
