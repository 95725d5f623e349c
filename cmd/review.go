package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contentpilot/contentpilot/internal/notify"
	"github.com/contentpilot/contentpilot/internal/workflow"
)

var (
	reviewActor    string
	reviewComments string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Approve, reject, or send content back for revision",
}

var submitCmd = &cobra.Command{
	Use:   "submit <content-id>",
	Short: "Submit a draft for approval",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(args[0], func(ctx context.Context, wf *workflow.Workflow, id string) bool {
			return wf.SubmitForApproval(ctx, id)
		}, "submitted for approval")
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <content-id>",
	Short: "Approve content (the hard gate)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(args[0], func(ctx context.Context, wf *workflow.Workflow, id string) bool {
			return wf.Approve(ctx, id, reviewActor, reviewComments)
		}, "approved")
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject <content-id>",
	Short: "Reject content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(args[0], func(ctx context.Context, wf *workflow.Workflow, id string) bool {
			return wf.Reject(ctx, id, reviewComments, reviewActor)
		}, "rejected")
	},
}

var reviseCmd = &cobra.Command{
	Use:   "revise <content-id>",
	Short: "Request an AI revision with reviewer notes",
	Long: `Marks the content as needing revision and, when a generator is
configured, regenerates it with the notes folded into the prompt. The
new draft is linked to the original. If regeneration fails the revision
request still stands; check the revisions list to see whether a new
draft appeared.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if reviewComments == "" {
			return fmt.Errorf("revision notes are required (--comments)")
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

		contentAgent, err := createAgentFromConfig(cfg)
		if err != nil {
			return err
		}

		notifyStore := notify.NewStore(database)
		wf := workflow.New(store,
			workflow.WithGenerator(contentAgent),
			workflow.WithSink(notify.NewDispatcher(notifyStore, cfg.WebhookURL)))

		ctx := context.Background()
		if !wf.RequestRevision(ctx, args[0], reviewComments, reviewActor) {
			return fmt.Errorf("content %s not found", args[0])
		}

		revisions, err := store.GetRevisionsOf(ctx, args[0])
		if err == nil && len(revisions) > 0 {
			fmt.Printf("Content %s sent for revision; new draft %s created\n", args[0], revisions[0].ID)
		} else {
			fmt.Printf("Content %s sent for revision; no new draft yet\n", args[0])
		}
		return nil
	},
}

// runTransition wires a workflow and executes a single transition.
func runTransition(id string, fn func(context.Context, *workflow.Workflow, string) bool, verb string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, database, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	notifyStore := notify.NewStore(database)
	wf := workflow.New(store,
		workflow.WithSink(notify.NewDispatcher(notifyStore, cfg.WebhookURL)))

	if !fn(context.Background(), wf, id) {
		return fmt.Errorf("content %s not found", id)
	}

	fmt.Printf("Content %s %s\n", id, verb)
	return nil
}

func init() {
	reviewCmd.PersistentFlags().StringVarP(&reviewActor, "actor", "a", "admin", "approver or reviewer identity")
	reviewCmd.PersistentFlags().StringVarP(&reviewComments, "comments", "c", "", "comments, rejection reason, or revision notes")

	reviewCmd.AddCommand(submitCmd)
	reviewCmd.AddCommand(approveCmd)
	reviewCmd.AddCommand(rejectCmd)
	reviewCmd.AddCommand(reviseCmd)
	rootCmd.AddCommand(reviewCmd)
}
