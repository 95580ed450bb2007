package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"infratrack.io/infratrack/internal/api"
	"infratrack.io/infratrack/internal/config"
	"infratrack.io/infratrack/internal/logging"
	"infratrack.io/infratrack/internal/storage"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the web server",
	Long: `Start the InfraTrack web UI, JSON API, health check and metrics
endpoint with the Echo framework.`,
	RunE: runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	if err := cfg.CheckSecret(); err != nil {
		return err
	}

	logger, closeLog, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = closeLog() }()

	if cfg.IsDevelopment() && cfg.Security.SecretKey == config.DefaultSecretKey {
		logger.Warn("using the default secret key; set SECRET_KEY outside development")
	}

	// Initialize storage layer
	store, err := storage.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	server, err := api.New(cfg, store, logger)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	// Start server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil

	case err := <-errChan:
		_ = store.Close()
		return fmt.Errorf("server error: %w", err)
	}
}
