package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/car-cost-forecast/internal/server"
	"github.com/iwvelando/car-cost-forecast/internal/store"
	"github.com/iwvelando/car-cost-forecast/internal/tracing"
	"github.com/iwvelando/car-cost-forecast/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the projection API over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	serveCmd.Flags().String("address", "", "listen address override")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := server.LoadConfig(settings.GetString("server-config"))
	if err != nil {
		return err
	}
	if address := settings.GetString("address"); address != "" {
		cfg.Address = address
	}

	logger, err := initializeLogger(cfg.Logging, settings.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.InitTracing(ctx, logger, cfg.Tracing, constants.ServiceName, version)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.GracePeriod())
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("failed to flush traces",
				zap.String("op", "main.runServe"),
				zap.Error(err),
			)
		}
	}()

	presets, err := store.New(ctx, logger, cfg.Store)
	if err != nil {
		// Projections still work without presets.
		logger.Warn("preset store unavailable",
			zap.String("op", "main.runServe"),
			zap.String("backend", cfg.Store.Backend),
			zap.Error(err),
		)
		presets = nil
	} else {
		defer func() {
			_ = presets.Close()
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, presets, cfg.UploadSizeBytes(), version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server",
			zap.String("op", "main.runServe"),
			zap.String("address", cfg.Address),
			zap.String("version", version),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server",
		zap.String("op", "main.runServe"),
	)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracePeriod())
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
