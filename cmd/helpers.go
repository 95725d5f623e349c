package cmd

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/contentpilot/contentpilot/internal/agent"
	"github.com/contentpilot/contentpilot/internal/config"
	"github.com/contentpilot/contentpilot/internal/content"
	"github.com/contentpilot/contentpilot/internal/db"
	"github.com/contentpilot/contentpilot/internal/llm"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `contentpilot init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if verbose {
		log.Printf("cmd: using config %s (provider=%s model=%s)", cfgFile, cfg.Provider, cfg.Model)
	}
	return cfg, nil
}

// openDatabase opens the SQLite database under the configured data dir.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	return db.Open(filepath.Join(cfg.DataDir, "contentpilot.db"))
}

// openStore opens the database and wraps it in a content store.
func openStore(cfg *config.Config) (*content.Store, *db.DB, error) {
	database, err := openDatabase(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return content.NewStore(database), database, nil
}

// createAgentFromConfig builds the generation agent, rate limited per
// the config.
func createAgentFromConfig(cfg *config.Config) (*agent.Agent, error) {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	if cfg.RequestsPerMinute > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.RequestsPerMinute)
	}
	return agent.New(provider, cfg.Model), nil
}
