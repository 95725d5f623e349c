package llm

import openai "github.com/sashabaranov/go-openai"

const xaiBaseURL = "https://api.x.ai/v1"

// NewXAIProvider creates a provider for the xAI (Grok) API, which is
// OpenAI-compatible.
func NewXAIProvider(apiKey string, model string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = xaiBaseURL

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		name:   "xai",
		model:  model,
	}
}
