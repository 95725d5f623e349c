package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contentpilot/contentpilot/internal/content"
)

var queueStatus string

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List content waiting in the pipeline",
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

		items, err := store.GetByStatus(context.Background(), content.Status(queueStatus))
		if err != nil {
			return fmt.Errorf("listing queue: %w", err)
		}

		if len(items) == 0 {
			fmt.Printf("No content with status %s\n", queueStatus)
			return nil
		}

		for _, item := range items {
			fmt.Printf("%s  %-10s  %s\n", item.ID, item.Platform, truncateTopic(item.Topic))
		}
		return nil
	},
}

func truncateTopic(topic string) string {
	if len(topic) > 60 {
		return topic[:60] + "..."
	}
	return topic
}

func init() {
	queueCmd.Flags().StringVarP(&queueStatus, "status", "s", string(content.StatusPendingApproval), "pipeline status to list")
	rootCmd.AddCommand(queueCmd)
}
