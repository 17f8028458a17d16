package llm

import "time"

// Config configures an Adapter.
type Config struct {
	// Name identifies the adapter in logs and metrics. Defaults to the
	// dialect name.
	Name string `yaml:"name" mapstructure:"name"`
	// Dialect selects a registered provider mapping.
	Dialect string `yaml:"dialect" mapstructure:"dialect"`
	// BaseURL overrides the dialect's default endpoint.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	// Model is the default model for requests that do not name one.
	Model       string        `yaml:"model" mapstructure:"model"`
	Temperature float64       `yaml:"temperature" mapstructure:"temperature" validate:"gte=0,lte=1"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=0"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Headers are sent with every request, after the dialect's own.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
}

func (c *Config) applyDefaults(d Dialect) {
	if c.Name == "" {
		c.Name = d.Name()
	}
	if c.BaseURL == "" {
		c.BaseURL = d.DefaultBaseURL()
	}
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
}
