package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/loan-repayments/internal/cache"
	"github.com/iwvelando/loan-repayments/internal/calculator"
	"github.com/iwvelando/loan-repayments/internal/metrics"
	"github.com/iwvelando/loan-repayments/internal/server"
	"github.com/iwvelando/loan-repayments/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	serverConfigPath string
	address          string
	logLevel         string
}

func newServeCommand() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the schedule API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	flags.StringVar(&opts.address, "address", "", "listen address override (e.g. :8080)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	return cmd
}

func runServe(ctx context.Context, opts *serveOptions) error {
	cfg, err := server.LoadConfig(opts.serverConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load server configuration at %s: %w", opts.serverConfigPath, err)
	}
	if opts.address != "" {
		cfg.Address = opts.address
	}

	logger, err := initializeLogger(cfg.Logging, opts.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	var recorder *metrics.Recorder
	if cfg.Metrics {
		recorder = metrics.NewRecorder()
	}

	calcOpts := []calculator.Option{calculator.WithMetrics(recorder)}
	store, err := cache.New(logger, cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close cache", zap.String("op", "main.serve"), zap.Error(err))
			}
		}()
		calcOpts = append(calcOpts, calculator.WithCache(store, cfg.Cache.TTL()))

		if pinger, ok := store.(interface{ Ping(context.Context) error }); ok {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			if err := pinger.Ping(pingCtx); err != nil {
				logger.Warn("schedule cache unreachable, calculations will run uncached until it recovers",
					zap.String("op", "main.serve"),
					zap.Error(err),
				)
			}
			cancel()
		}
	}

	handler := server.NewHandler(logger, calculator.New(logger, calcOpts...), recorder, cfg.BodySizeBytes(), Version)
	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("op", "main.serve"),
			zap.String("address", cfg.Address),
			zap.Int64("maxBodySize", cfg.BodySizeBytes()),
			zap.String("cache", cfg.Cache.Backend),
			zap.Bool("metrics", cfg.Metrics),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server", zap.String("op", "main.serve"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
