package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show pipeline statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, database, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		stats, err := store.Stats(context.Background())
		if err != nil {
			return fmt.Errorf("computing stats: %w", err)
		}

		fmt.Printf("Total content:   %d\n", stats.Total)
		fmt.Printf("AI generations:  %d\n", stats.Generated)
		fmt.Printf("Approval rate:   %.1f%%\n", stats.ApprovalRate*100)
		fmt.Println()
		for status, count := range stats.ByStatus {
			fmt.Printf("  %-17s %d\n", status, count)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
