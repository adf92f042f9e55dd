/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the REST API server. Requests must carry the configured API key
in the X-API-Key header; /metrics is open for scraping.

Examples:
  serialize serve
  serialize serve --bind 0.0.0.0 --port 9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Only override if explicitly set
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port, _ = cmd.Flags().GetInt("port")
			}
			if cmd.Flags().Changed("bind") {
				a.cfg.Server.Bind, _ = cmd.Flags().GetString("bind")
			}

			store, err := a.openArchive()
			if err != nil {
				return err
			}
			defer store.Close()

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.log.Info("serving",
				zap.String("config", a.configPath),
				zap.String("storage", a.cfg.Storage.Backend),
				zap.Int("formats", len(a.cfg.Formats)))

			return a.serverStarter().StartServer(ctx, a.cfg, store, a.log)
		},
	}

	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
	return serveCmd
}
