// Package hub is a client for the remote prompt hub, a registry of named,
// versioned prompt templates.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound is returned when the hub has no prompt with the given name.
var ErrNotFound = errors.New("prompt not found")

const defaultTimeout = 30 * time.Second

// Client talks to the prompt hub REST API.
type Client struct {
	baseURL    string
	apiKey     string
	workspace  string
	httpClient *http.Client
}

// NewClient creates a hub client. The workspace is the hub namespace
// prompts are pulled from and pushed to.
func NewClient(baseURL, apiKey, workspace string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		workspace:  workspace,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// PushOptions control how a prompt is published.
type PushOptions struct {
	Public      bool
	Description string
	Tags        []string
}

// pushRequest is the wire format for publishing a prompt version.
type pushRequest struct {
	Description string            `json:"description,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	IsPublic    bool              `json:"is_public"`
	Messages    []TemplateMessage `json:"messages"`
}

type pushResponse struct {
	URL        string `json:"url"`
	CommitHash string `json:"commit_hash"`
}

// Pull fetches the latest version of a named prompt.
func (c *Client) Pull(ctx context.Context, name string) (*Prompt, error) {
	endpoint := c.promptURL(name) + "/latest"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build hub request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hub pull failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("pulling prompt %q: %w", name, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("pull", name, resp)
	}

	var prompt Prompt
	if err := json.NewDecoder(resp.Body).Decode(&prompt); err != nil {
		return nil, fmt.Errorf("failed to decode hub response for %q: %w", name, err)
	}
	if prompt.Name == "" {
		prompt.Name = name
	}
	if len(prompt.Messages) == 0 {
		return nil, fmt.Errorf("prompt %q has no messages", name)
	}

	return &prompt, nil
}

// Push publishes a prompt version under the client's workspace and returns
// the hub URL of the new version.
func (c *Client) Push(ctx context.Context, name string, messages []TemplateMessage, opts PushOptions) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("cannot push prompt %q with no messages", name)
	}

	body, err := json.Marshal(pushRequest{
		Description: opts.Description,
		Tags:        opts.Tags,
		IsPublic:    opts.Public,
		Messages:    messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.promptURL(name), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build hub request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("hub push failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", statusError("push", name, resp)
	}

	var pushed pushResponse
	if err := json.NewDecoder(resp.Body).Decode(&pushed); err != nil {
		return "", fmt.Errorf("failed to decode push response for %q: %w", name, err)
	}
	if pushed.URL == "" {
		return "", fmt.Errorf("hub returned no URL for pushed prompt %q", name)
	}

	return pushed.URL, nil
}

func (c *Client) promptURL(name string) string {
	return fmt.Sprintf("%s/api/v1/prompts/%s/%s",
		c.baseURL, url.PathEscape(c.workspace), url.PathEscape(name))
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
}

// statusError builds an error from a non-success hub response, keeping a
// short body excerpt for diagnostics.
func statusError(op, name string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("hub %s for %q failed: %s: %s", op, name, resp.Status, bytes.TrimSpace(body))
}
