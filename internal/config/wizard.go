package config

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to the given path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to contentpilot! Let's configure your pipeline.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"openai", "xai", "anthropic"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)
	cfg.Model = DefaultModel(cfg.Provider)

	// 2. Model override.
	modelPrompt := promptui.Prompt{
		Label:   "Model",
		Default: cfg.Model,
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	cfg.Model = model

	// 3. Brand identity.
	companyPrompt := promptui.Prompt{
		Label:   "Company name",
		Default: cfg.Brand.CompanyName,
	}
	company, err := companyPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("company name: %w", err)
	}
	cfg.Brand.CompanyName = company

	tonePrompt := promptui.Select{
		Label: "Brand tone",
		Items: []string{
			"professional yet innovative",
			"casual and friendly",
			"technical and precise",
			"inspirational",
		},
	}
	_, tone, err := tonePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("tone: %w", err)
	}
	cfg.Brand.Tone = tone

	audiencePrompt := promptui.Prompt{
		Label:   "Target audience",
		Default: cfg.Brand.TargetAudience,
	}
	audience, err := audiencePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("target audience: %w", err)
	}
	cfg.Brand.TargetAudience = audience

	pillarsPrompt := promptui.Prompt{
		Label:   "Content pillars (comma-separated)",
		Default: strings.Join(cfg.Brand.ContentPillars, ", "),
	}
	pillars, err := pillarsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("content pillars: %w", err)
	}
	cfg.Brand.ContentPillars = splitList(pillars)

	forbiddenPrompt := promptui.Prompt{
		Label:   "Forbidden topics (comma-separated)",
		Default: strings.Join(cfg.Brand.ForbiddenTopics, ", "),
	}
	forbidden, err := forbiddenPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("forbidden topics: %w", err)
	}
	cfg.Brand.ForbiddenTopics = splitList(forbidden)

	// 4. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: cfg.DataDir,
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	cfg.DataDir = dataDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(path); err != nil {
		return nil, err
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", path)
	return cfg, nil
}

// splitList turns a comma-separated prompt answer into a trimmed slice.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
