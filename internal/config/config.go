// Package config loads promptgate configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/promptgate/promptgate/internal/llm"
	"github.com/promptgate/promptgate/internal/throttle"
)

// Environment variable names.
const (
	EnvProvider  = "LLM_PROVIDER"
	EnvModel     = "LLM_MODEL"
	EnvEvalModel = "EVAL_MODEL"

	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvGoogleAPIKey = "GOOGLE_API_KEY"

	EnvHubAPIURL    = "PROMPTHUB_API_URL"
	EnvHubAPIKey    = "PROMPTHUB_API_KEY"
	EnvHubWorkspace = "PROMPTHUB_WORKSPACE"

	EnvDatasetPath = "DATASET_PATH"

	EnvThrottleMinInterval = "THROTTLE_MIN_INTERVAL"
	EnvThrottleMaxRetries  = "THROTTLE_MAX_RETRIES"
	EnvThrottleBackoffBase = "THROTTLE_BACKOFF_BASE"
	EnvThrottleMaxBackoff  = "THROTTLE_MAX_BACKOFF"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultProvider  = llm.ProviderOpenAI
	DefaultModel     = "gpt-4o-mini"
	DefaultEvalModel = "gpt-4o"
	DefaultHubAPIURL = "https://api.prompthub.dev"
)

// Config holds the resolved runtime configuration.
type Config struct {
	// Provider selects the chat-model provider ("openai" or "google").
	Provider string
	// Model is the model answering the prompt under test.
	Model string
	// EvalModel is the model acting as judge.
	EvalModel string
	// APIKey is the provider API key for the selected provider.
	APIKey string

	// HubAPIURL is the base URL of the prompt hub.
	HubAPIURL string
	// HubAPIKey authenticates hub pulls and pushes.
	HubAPIKey string
	// HubWorkspace is the hub workspace (owner) prompts live under.
	HubWorkspace string

	// DatasetPath is the JSONL evaluation dataset file.
	DatasetPath string

	// Throttle holds the pacing/retry tunables for remote calls.
	Throttle throttle.Config
}

// MissingEnvError reports a required environment variable that is not set.
type MissingEnvError struct {
	Name string
}

func (e *MissingEnvError) Error() string {
	return "required environment variable not set: " + e.Name
}

// UnsupportedProviderError reports an unknown LLM_PROVIDER value.
type UnsupportedProviderError struct {
	Provider string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider %q (supported: %s, %s)",
		e.Provider, llm.ProviderOpenAI, llm.ProviderGoogle)
}

// Load reads configuration from the environment. It fails before any remote
// call is made: a missing provider key or an unknown provider identifier is
// a fatal configuration error.
func Load() (*Config, error) {
	cfg := &Config{
		Provider:     getenvDefault(EnvProvider, DefaultProvider),
		Model:        getenvDefault(EnvModel, DefaultModel),
		EvalModel:    getenvDefault(EnvEvalModel, DefaultEvalModel),
		HubAPIURL:    getenvDefault(EnvHubAPIURL, DefaultHubAPIURL),
		HubAPIKey:    os.Getenv(EnvHubAPIKey),
		HubWorkspace: os.Getenv(EnvHubWorkspace),
		DatasetPath:  os.Getenv(EnvDatasetPath),
	}

	switch cfg.Provider {
	case llm.ProviderOpenAI:
		cfg.APIKey = os.Getenv(EnvOpenAIAPIKey)
		if cfg.APIKey == "" {
			return nil, &MissingEnvError{Name: EnvOpenAIAPIKey}
		}
	case llm.ProviderGoogle:
		cfg.APIKey = os.Getenv(EnvGoogleAPIKey)
		if cfg.APIKey == "" {
			return nil, &MissingEnvError{Name: EnvGoogleAPIKey}
		}
	default:
		return nil, &UnsupportedProviderError{Provider: cfg.Provider}
	}

	if cfg.HubAPIKey == "" {
		return nil, &MissingEnvError{Name: EnvHubAPIKey}
	}

	var err error
	cfg.Throttle, err = loadThrottle()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadThrottle reads the pacing tunables. Unset variables keep the zero
// value so the throttle package applies its own defaults.
func loadThrottle() (throttle.Config, error) {
	var cfg throttle.Config
	var err error

	if cfg.MinInterval, err = durationEnv(EnvThrottleMinInterval); err != nil {
		return cfg, err
	}
	if cfg.BackoffBase, err = durationEnv(EnvThrottleBackoffBase); err != nil {
		return cfg, err
	}
	if cfg.MaxBackoff, err = durationEnv(EnvThrottleMaxBackoff); err != nil {
		return cfg, err
	}

	if v := os.Getenv(EnvThrottleMaxRetries); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", EnvThrottleMaxRetries, v, err)
		}
		cfg.MaxRetries = n
	}

	return cfg, nil
}

// durationEnv parses a duration variable. Plain numbers are accepted as
// seconds for parity with the tunables' original units.
func durationEnv(name string) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return d, nil
}

func getenvDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
