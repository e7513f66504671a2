package llm

// Float64Ptr returns a pointer to v. A nil ChatRequest temperature means
// "provider default", so requesting an explicit zero (deterministic judge
// output) needs a pointer.
func Float64Ptr(v float64) *float64 {
	return &v
}

// clientConfig collects the settings shared by all provider clients.
type clientConfig struct {
	baseURL     string
	apiKey      string
	model       string
	temperature *float64
}

// Option configures a provider client at construction time.
type Option func(*clientConfig)

// WithBaseURL overrides the provider's API endpoint.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithAPIKey sets the provider API key.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithModel sets the model used when a ChatRequest names none.
func WithModel(model string) Option {
	return func(c *clientConfig) {
		c.model = model
	}
}

// WithTemperature sets the temperature used when a ChatRequest carries none.
func WithTemperature(temp float64) Option {
	return func(c *clientConfig) {
		c.temperature = &temp
	}
}
