package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tcollab-dev/tcollab/internal/auditlog"
	"github.com/tcollab-dev/tcollab/internal/board"
	"github.com/tcollab-dev/tcollab/internal/config"
	"github.com/tcollab-dev/tcollab/internal/relay"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand() *cobra.Command {
	var configPath string
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the collaborative board server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Server.Listen = listen
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "tcollab.yaml", "path to config file")
	cmd.Flags().StringVar(&listen, "listen", "", "listen address override")

	return cmd
}

// loadConfig reads the config file, falling back to defaults when the
// file does not exist so `tcollab serve` works without an init step.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

func runServe(cfg *config.Config) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	var audit *auditlog.Log
	if cfg.Audit.LogPath != "" {
		audit = auditlog.New(cfg.Audit.LogPath)
		logger.Info("audit trail enabled", "path", cfg.Audit.LogPath)
	}

	registry := board.NewRegistry(cfg.Session.DefaultTitle)
	hub := relay.NewHub(logger, registry, audit)
	server := relay.NewServer(logger, hub, cfg.Server.PublicDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)

	httpServer := &http.Server{
		Addr:    cfg.Server.Listen,
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Listen)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
