package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/finaipro/colombiagpt/api"
	"github.com/finaipro/colombiagpt/internal/conversation"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Inicia el servidor HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	pipeline, err := a.newPipeline()
	if err != nil {
		return err
	}

	conversations, err := conversation.New(a.pool, a.logger)
	if err != nil {
		return err
	}

	server := api.NewServer(pipeline, conversations, a.pool, a.logger)
	return server.Run(ctx, a.cfg.ListenAddr)
}
