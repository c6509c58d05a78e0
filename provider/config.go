package provider

import (
	"fmt"
	"os"
	"time"
)

// Config holds configuration for creating an LLM provider client.
// Common fields apply to all backends; use Options for backend-specific settings.
type Config struct {
	// --- Provider Selection ---

	// Provider is the name of the provider to use.
	// Required. Values: "ollama"
	Provider string `json:"provider" yaml:"provider" toml:"provider"`

	// --- Model Selection ---

	// Model is the model to use (backend-specific name).
	// Examples: "llama3.1:8b", "qwen2.5:14b", "mistral:7b"
	Model string `json:"model" yaml:"model" toml:"model"`

	// --- Connection ---

	// BaseURL is the backend's HTTP endpoint.
	// Default varies by backend (Ollama: "http://localhost:11434").
	BaseURL string `json:"base_url" yaml:"base_url" toml:"base_url"`

	// --- Prompts ---

	// SystemPrompt is the system message prepended to all requests.
	// Optional.
	SystemPrompt string `json:"system_prompt" yaml:"system_prompt" toml:"system_prompt"`

	// --- Execution Limits ---

	// Timeout is the maximum duration for a completion request.
	// 0 uses the backend default.
	Timeout time.Duration `json:"timeout" yaml:"timeout" toml:"timeout"`

	// --- Backend-Specific Options ---

	// Options holds backend-specific configuration.
	// See each backend's documentation for available options.
	//
	// Common options for "ollama":
	//   - "keep_alive": string (model residency, e.g. "5m")
	//   - "synthesis": bool (follow-up completion after tool-only turns)
	//   - "min_response_length": int (threshold that triggers synthesis)
	//   - "max_synthesis_attempts": int
	//   - "synthesis_timeout": string (duration, also the stream idle limit)
	Options map[string]any `json:"options" yaml:"options" toml:"options"`
}

// DefaultConfig returns a Config with sensible defaults.
// Provider must still be set before use.
func DefaultConfig() Config {
	return Config{
		Timeout: 5 * time.Minute,
	}
}

// LoadFromEnv populates config fields from environment variables.
// Environment variables use the OLLAMAKIT_ prefix and take precedence over
// existing values.
//
// Supported variables:
//   - OLLAMAKIT_PROVIDER: Provider name
//   - OLLAMAKIT_MODEL: Model name
//   - OLLAMAKIT_BASE_URL: Backend endpoint
//   - OLLAMAKIT_SYSTEM_PROMPT: System prompt
//   - OLLAMAKIT_TIMEOUT: Timeout duration (e.g., "5m")
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("OLLAMAKIT_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("OLLAMAKIT_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("OLLAMAKIT_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("OLLAMAKIT_SYSTEM_PROMPT"); v != "" {
		c.SystemPrompt = v
	}
	if v := os.Getenv("OLLAMAKIT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
}

// FromEnv creates a Config from environment variables with defaults.
func FromEnv() Config {
	cfg := DefaultConfig()
	cfg.LoadFromEnv()
	return cfg
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}
	return nil
}

// WithProvider returns a copy of the config with the specified provider.
func (c Config) WithProvider(provider string) Config {
	c.Provider = provider
	return c
}

// WithModel returns a copy of the config with the specified model.
func (c Config) WithModel(model string) Config {
	c.Model = model
	return c
}

// WithBaseURL returns a copy of the config with the specified endpoint.
func (c Config) WithBaseURL(url string) Config {
	c.BaseURL = url
	return c
}

// WithOption returns a copy of the config with the specified option set.
func (c Config) WithOption(key string, value any) Config {
	if c.Options == nil {
		c.Options = make(map[string]any)
	} else {
		// Copy to avoid modifying original
		newOpts := make(map[string]any, len(c.Options)+1)
		for k, v := range c.Options {
			newOpts[k] = v
		}
		c.Options = newOpts
	}
	c.Options[key] = value
	return c
}

// GetOption retrieves a backend-specific option by key.
// Returns nil if the option is not set.
func (c Config) GetOption(key string) any {
	if c.Options == nil {
		return nil
	}
	return c.Options[key]
}

// GetStringOption retrieves a string option, returning defaultVal if not set.
func (c Config) GetStringOption(key, defaultVal string) string {
	if c.Options == nil {
		return defaultVal
	}
	if v, ok := c.Options[key].(string); ok {
		return v
	}
	return defaultVal
}

// GetBoolOption retrieves a bool option, returning defaultVal if not set.
func (c Config) GetBoolOption(key string, defaultVal bool) bool {
	if c.Options == nil {
		return defaultVal
	}
	if v, ok := c.Options[key].(bool); ok {
		return v
	}
	return defaultVal
}

// GetIntOption retrieves an int option, returning defaultVal if not set.
func (c Config) GetIntOption(key string, defaultVal int) int {
	if c.Options == nil {
		return defaultVal
	}
	switch v := c.Options[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return defaultVal
}

// GetFloatOption retrieves a float option, returning defaultVal if not set.
func (c Config) GetFloatOption(key string, defaultVal float64) float64 {
	if c.Options == nil {
		return defaultVal
	}
	switch v := c.Options[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return defaultVal
}

// GetDurationOption retrieves a duration option, returning defaultVal if not set.
// Accepts time.Duration values and duration strings (e.g., "3s").
func (c Config) GetDurationOption(key string, defaultVal time.Duration) time.Duration {
	if c.Options == nil {
		return defaultVal
	}
	switch v := c.Options[key].(type) {
	case time.Duration:
		return v
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	case int:
		return time.Duration(v)
	case int64:
		return time.Duration(v)
	}
	return defaultVal
}

// GetStringSliceOption retrieves a string slice option, returning nil if not set.
// Handles both []string and []any (from JSON unmarshaling).
func (c Config) GetStringSliceOption(key string) []string {
	if c.Options == nil {
		return nil
	}
	switch v := c.Options[key].(type) {
	case []string:
		return v
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	}
	return nil
}
