package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/contentpilot/contentpilot/internal/safety"
	"github.com/contentpilot/contentpilot/internal/scheduler"
)

var scheduleAt string

var scheduleCmd = &cobra.Command{
	Use:   "schedule <content-id>",
	Short: "Queue approved content for posting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := time.Parse(time.RFC3339, scheduleAt)
		if err != nil {
			return fmt.Errorf("parsing --at (want RFC3339, e.g. 2026-09-02T10:00:00Z): %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, database, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		sched := scheduler.New(store, safety.NewController())
		if err := sched.Schedule(context.Background(), args[0], at); err != nil {
			return err
		}

		fmt.Printf("Scheduled %s for %s\n", args[0], at.Format(time.RFC3339))
		return nil
	},
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled content",
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

		items, err := scheduler.New(store, safety.NewController()).Upcoming(context.Background())
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("Nothing scheduled")
			return nil
		}
		for _, item := range items {
			when := "?"
			if item.ScheduledTime != nil {
				when = item.ScheduledTime.Format(time.RFC3339)
			}
			fmt.Printf("%s  %-10s  %s  %s\n", item.ID, item.Platform, when, truncateTopic(item.Topic))
		}
		return nil
	},
}

var schedulePublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish all scheduled content whose time has arrived",
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

		published, err := scheduler.New(store, safety.NewController()).PublishDue(context.Background(), time.Now())
		if err != nil {
			return err
		}
		if len(published) == 0 {
			fmt.Println("Nothing due")
			return nil
		}
		for _, id := range published {
			fmt.Printf("Published %s\n", id)
		}
		return nil
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleAt, "at", "", "posting time in RFC3339")
	scheduleCmd.MarkFlagRequired("at")

	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(schedulePublishCmd)
	rootCmd.AddCommand(scheduleCmd)
}
