package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/contentpilot/contentpilot/cmd"
)

func main() {
	// API keys usually live in .env during development.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
