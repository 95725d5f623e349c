package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contentpilot/contentpilot/internal/agent"
	"github.com/contentpilot/contentpilot/internal/content"
	"github.com/contentpilot/contentpilot/internal/notify"
	"github.com/contentpilot/contentpilot/internal/workflow"
)

var (
	genPlatform string
	genTopic    string
	genTone     string
	genSubmit   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a content draft with the configured LLM",
	Long: `Generates a platform-specific content draft from a topic brief and the
configured brand voice, and stores it with status draft. Generation
failures are reported directly; no content item is created without a
body.`,
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

		contentAgent, err := createAgentFromConfig(cfg)
		if err != nil {
			return err
		}

		ctx := context.Background()

		result, err := contentAgent.Generate(ctx, agent.Request{
			Platform:   genPlatform,
			Topic:      genTopic,
			BrandVoice: cfg.Brand,
			Tone:       genTone,
		})
		if err != nil {
			return fmt.Errorf("generating content: %w", err)
		}

		id, err := store.Create(ctx, content.Platform(strings.ToLower(genPlatform)), genTopic, result.Content, result.Metadata)
		if err != nil {
			return fmt.Errorf("storing draft: %w", err)
		}

		fmt.Printf("Draft %s created for %s\n\n", id, genPlatform)
		fmt.Println(result.Content)
		if len(result.Hashtags) > 0 {
			fmt.Printf("\nHashtags: %s\n", strings.Join(result.Hashtags, " "))
		}
		if result.EngagementQuestion != "" {
			fmt.Printf("Engagement question: %s\n", result.EngagementQuestion)
		}

		if genSubmit {
			notifyStore := notify.NewStore(database)
			wf := workflow.New(store,
				workflow.WithSink(notify.NewDispatcher(notifyStore, cfg.WebhookURL)))
			if !wf.SubmitForApproval(ctx, id) {
				return fmt.Errorf("submitting %s for approval failed", id)
			}
			fmt.Printf("\nSubmitted %s for approval\n", id)
		}

		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&genPlatform, "platform", "p", "linkedin", "target platform (linkedin, twitter, instagram, facebook, blog)")
	generateCmd.Flags().StringVarP(&genTopic, "topic", "t", "", "content brief (required)")
	generateCmd.Flags().StringVar(&genTone, "tone", "", "tone override for this draft")
	generateCmd.Flags().BoolVar(&genSubmit, "submit", false, "submit the draft for approval immediately")
	generateCmd.MarkFlagRequired("topic")
	rootCmd.AddCommand(generateCmd)
}
