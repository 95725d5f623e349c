package config

import "github.com/contentpilot/contentpilot/internal/agent"

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderXAI       ProviderType = "xai"
	ProviderAnthropic ProviderType = "anthropic"
)

// Config is the top-level contentpilot configuration, corresponding to
// .contentpilot.yml.
type Config struct {
	Provider          ProviderType     `yaml:"provider" koanf:"provider"`
	Model             string           `yaml:"model" koanf:"model"`
	RequestsPerMinute int              `yaml:"requests_per_minute" koanf:"requests_per_minute"`
	DataDir           string           `yaml:"data_dir" koanf:"data_dir"`
	WebhookURL        string           `yaml:"webhook_url" koanf:"webhook_url"`
	Brand             agent.BrandVoice `yaml:"brand" koanf:"brand"`
	Server            ServerConfig     `yaml:"server" koanf:"server"`
}

// ServerConfig holds REST server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
