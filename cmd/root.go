package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "contentpilot",
	Short: "AI content pipeline with a hard human-approval gate",
	Long: `Contentpilot generates platform-specific social content drafts with an
LLM and moves them through an approval workflow: draft, pending
approval, approved/rejected/needs-revision, scheduled, published.
Nothing publishes without an explicit human approval, and a safety
controller can halt all automation instantly.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".contentpilot.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
