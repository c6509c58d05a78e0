package ollama

import (
	"github.com/randalmurphal/ollamakit/provider"
)

func init() {
	provider.Register(providerName, newFromProviderConfig)
}

// newFromProviderConfig creates an ollama Client from a provider.Config.
// This is the factory function registered with the provider registry.
func newFromProviderConfig(config provider.Config) (provider.Client, error) {
	// The registry routed by name; the field does not need repeating.
	if config.Provider == "" {
		config.Provider = providerName
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	cfg := Config{
		BaseURL:      config.BaseURL,
		Model:        config.Model,
		SystemPrompt: config.SystemPrompt,
	}

	// Map timeout
	if config.Timeout > 0 {
		cfg.RequestTimeout = config.Timeout
	}

	// Map ollama-specific options
	if config.Options != nil {
		cfg.KeepAlive = config.GetStringOption("keep_alive", "")
		cfg.Synthesis.Disabled = !config.GetBoolOption("synthesis", true)
		cfg.Synthesis.MinResponseLength = config.GetIntOption("min_response_length", 0)
		cfg.Synthesis.MaxAttempts = config.GetIntOption("max_synthesis_attempts", 0)
		cfg.Synthesis.Timeout = config.GetDurationOption("synthesis_timeout", 0)
		cfg.Synthesis.Prompt = config.GetStringOption("synthesis_prompt", "")
	}

	client, err := NewClientWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}
