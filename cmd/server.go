package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/contentpilot/contentpilot/internal/dashboard"
	"github.com/contentpilot/contentpilot/internal/notify"
	"github.com/contentpilot/contentpilot/internal/safety"
	"github.com/contentpilot/contentpilot/internal/server"
	"github.com/contentpilot/contentpilot/internal/workflow"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the contentpilot REST server",
	Long: `Starts the REST server exposing the approval workflow, content queries,
safety controls, notifications, and the dashboard activity feed.`,
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

		// The safety controller lives for the whole process; every
		// automated decision consults this one instance.
		safetyCtrl := safety.NewController()

		notifyStore := notify.NewStore(database)
		dispatcher := notify.NewDispatcher(notifyStore, cfg.WebhookURL)

		wfOpts := []workflow.Option{workflow.WithSink(dispatcher)}
		if contentAgent, err := createAgentFromConfig(cfg); err == nil {
			wfOpts = append(wfOpts, workflow.WithGenerator(contentAgent))
		} else {
			fmt.Fprintf(os.Stderr, "Warning: revision regeneration disabled: %v\n", err)
		}
		wf := workflow.New(store, wfOpts...)

		port := serverPort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := server.New(server.Config{
			Port:     port,
			AllowAll: cfg.Server.AllowAll,
		}, server.Deps{
			Store:     store,
			Workflow:  wf,
			Safety:    safetyCtrl,
			Notify:    notifyStore,
			Dashboard: dashboard.New(store, safetyCtrl),
		})

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "contentpilot server v%s starting on port %d\n", Version, port)
		return srv.Start()
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "port to listen on (overrides config)")
	rootCmd.AddCommand(serverCmd)
}
