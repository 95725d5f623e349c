package config

import "github.com/contentpilot/contentpilot/internal/agent"

// defaultModels maps each provider to its default model.
var defaultModels = map[ProviderType]string{
	ProviderOpenAI:    "gpt-4o",
	ProviderXAI:       "grok-beta",
	ProviderAnthropic: "claude-sonnet-4-5-20250929",
}

// DefaultModel returns the default model for a provider.
func DefaultModel(provider ProviderType) string {
	return defaultModels[provider]
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOpenAI,
		Model:             defaultModels[ProviderOpenAI],
		RequestsPerMinute: 20,
		DataDir:           ".contentpilot",
		Brand:             agent.DefaultBrandVoice(),
		Server: ServerConfig{
			Port: 8080,
		},
	}
}
