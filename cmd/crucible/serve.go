package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/michaelbrown/crucible/internal/config"
	"github.com/michaelbrown/crucible/internal/runner"
	"github.com/michaelbrown/crucible/internal/server"
	"github.com/michaelbrown/crucible/internal/storage/sqlite"
)

var portFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Crucible web server",
	Long: `Start the Crucible HTTP server with REST API and WebSocket support.

The web UI is available at the root URL. API endpoints are under /api.

Examples:
  crucible serve
  crucible serve --port 9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Open storage
	store, err := sqlite.Open(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	// Build the execution service
	svc, err := runner.New(runner.Config{
		ExecutionTimeout: cfg.Sandbox.Timeout(),
		MaxCodeLength:    cfg.Sandbox.MaxCodeLength,
	})
	if err != nil {
		return fmt.Errorf("initializing runner: %w", err)
	}

	if cfg.HasProviders() {
		logrus.WithField("default", cfg.DefaultProvider).Info("chat providers configured")
	} else {
		logrus.Info("no chat providers configured; chat endpoints disabled")
	}

	// Determine port
	port := cfg.Server.Port
	if portFlag > 0 {
		port = portFlag
	}

	// Create and start server
	srv := server.New(cfg, store, svc)

	// Graceful shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		srv.Shutdown(context.Background())
	}()

	return srv.Start(port)
}
