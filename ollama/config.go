// Package ollama provides a client for models served by a local Ollama
// instance.
//
// The client speaks Ollama's HTTP API directly and presents it behind the
// normalized provider contract. Conversation history, tools, response
// formats, and generation parameters are translated to the backend wire
// format; responses and streams are normalized back.
//
// # Architecture
//
//	Go Client <--HTTP/NDJSON--> Ollama Server <--> Local Model
//
// # Tool history
//
// The backend has no native roles for tool transcripts, so past tool calls
// and results are serialized into message text using a stable marker
// grammar. The current turn's tools are still advertised natively so the
// model can request invocations.
//
// # Follow-up synthesis
//
// Small local models sometimes go silent after a round of tool calls: the
// tools ran, the results are in the history, and the model answers with an
// empty or near-empty string. When that happens the client makes a bounded
// number of tool-free follow-up calls to elicit a readable answer, and on
// streams it also rescues upstreams that stall entirely. This behavior is
// on by default and tunable via SynthesisConfig.
//
// # Usage
//
//	client, err := provider.New("ollama", provider.Config{
//	    Model:   "llama3.1:8b",
//	    BaseURL: "http://localhost:11434",
//	    Options: map[string]any{
//	        "keep_alive": "5m",
//	    },
//	})
package ollama

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Config holds ollama provider configuration.
// The configuration is copied when a client is constructed; mutating the
// original afterwards has no effect on the client.
type Config struct {
	// BaseURL is the Ollama server endpoint.
	// Default: "http://localhost:11434"
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the model name to use (e.g., "llama3.1:8b").
	// Required.
	Model string `json:"model" yaml:"model"`

	// SystemPrompt is prepended to requests that carry no system prompt
	// of their own.
	SystemPrompt string `json:"system_prompt" yaml:"system_prompt"`

	// KeepAlive controls how long the server keeps the model loaded after
	// the request (e.g., "5m"). Empty uses the server default.
	KeepAlive string `json:"keep_alive" yaml:"keep_alive"`

	// RequestTimeout is the default timeout for completion requests.
	// Default: 5 minutes.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`

	// Synthesis configures tool-free follow-up completions.
	Synthesis SynthesisConfig `json:"synthesis" yaml:"synthesis"`
}

// SynthesisConfig tunes the follow-up completion made when a turn ends with
// tool activity but an unusable answer.
type SynthesisConfig struct {
	// Disabled turns follow-up completions off entirely.
	Disabled bool `json:"disabled" yaml:"disabled"`

	// MinResponseLength is the minimum trimmed answer length, in bytes,
	// that counts as usable after tool activity. Shorter answers trigger
	// a follow-up call.
	// Default: 10.
	MinResponseLength int `json:"min_response_length" yaml:"min_response_length"`

	// MaxAttempts bounds the number of follow-up calls per request.
	// Default: 2.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// Timeout bounds each follow-up call. On streams it doubles as the
	// idle limit: an upstream that produces nothing for this long is
	// abandoned and the answer synthesized from the tool results.
	// Default: 3 seconds.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Prompt overrides the instruction used to elicit the final answer.
	// Supports {{question}} and {{tool_results}} placeholders.
	// Default: DefaultSynthesisPrompt.
	Prompt string `json:"prompt" yaml:"prompt"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "http://localhost:11434",
		RequestTimeout: 5 * time.Minute,
		Synthesis: SynthesisConfig{
			MinResponseLength: 10,
			MaxAttempts:       2,
			Timeout:           3 * time.Second,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}

	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url %q: %w", c.BaseURL, err)
	}

	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must be >= 0")
	}

	if c.Synthesis.MinResponseLength < 0 {
		return fmt.Errorf("synthesis.min_response_length must be >= 0")
	}
	if c.Synthesis.MaxAttempts < 0 {
		return fmt.Errorf("synthesis.max_attempts must be >= 0")
	}
	if c.Synthesis.Timeout < 0 {
		return fmt.Errorf("synthesis.timeout must be >= 0")
	}

	return nil
}

// WithDefaults returns a copy of the config with defaults applied for unset fields.
func (c Config) WithDefaults() Config {
	defaults := DefaultConfig()

	if c.BaseURL == "" {
		c.BaseURL = defaults.BaseURL
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaults.RequestTimeout
	}
	if c.Synthesis.MinResponseLength == 0 {
		c.Synthesis.MinResponseLength = defaults.Synthesis.MinResponseLength
	}
	if c.Synthesis.MaxAttempts == 0 {
		c.Synthesis.MaxAttempts = defaults.Synthesis.MaxAttempts
	}
	if c.Synthesis.Timeout == 0 {
		c.Synthesis.Timeout = defaults.Synthesis.Timeout
	}

	return c
}

// Option configures an ollama Client.
type Option func(*Client)

// WithBaseURL sets the Ollama server endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.cfg.BaseURL = url }
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Client) { c.cfg.Model = model }
}

// WithSystemPrompt sets the default system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) { c.cfg.SystemPrompt = prompt }
}

// WithKeepAlive sets the server-side model residency window.
func WithKeepAlive(d string) Option {
	return func(c *Client) { c.cfg.KeepAlive = d }
}

// WithRequestTimeout sets the default request timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) { c.cfg.RequestTimeout = d }
}

// WithSynthesis replaces the follow-up completion configuration.
func WithSynthesis(sc SynthesisConfig) Option {
	return func(c *Client) { c.cfg.Synthesis = sc }
}

// WithSynthesisDisabled turns follow-up completions off.
func WithSynthesisDisabled() Option {
	return func(c *Client) { c.cfg.Synthesis.Disabled = true }
}

// WithHTTPClient sets the HTTP client used for backend calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}
