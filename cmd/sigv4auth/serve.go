package main

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
	"go.opentelemetry.io/otel/trace"

	"github.com/sagarc03/sigv4auth"
	"github.com/sagarc03/sigv4auth/config"
	sigv4http "github.com/sagarc03/sigv4auth/http"
	"github.com/sagarc03/sigv4auth/metrics"
	"github.com/sagarc03/sigv4auth/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the sigv4auth HTTP server.

Endpoints:
  POST /v1/validate   validate a string-to-sign, signature and access key
  GET  /healthz       liveness
  GET  /metrics       Prometheus metrics (when metrics.enabled)`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5709, "HTTP server port (env: SIGV4AUTH_SERVER_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	store, closeStore, err := openSecretStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := []sigv4auth.Option{sigv4auth.WithLogger(slog.Default())}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		opts = append(opts, sigv4auth.WithObserver(m))
	}

	validator := sigv4auth.NewValidator(store, opts...)

	var tp trace.TracerProvider
	if cfg.Metrics.Tracing.Enabled {
		provider, err := tracing.Init(ctx, cfg.Metrics.Tracing, version)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer func() {
			flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer flushCancel()
			if err := provider.Shutdown(flushCtx); err != nil {
				slog.Error("tracing shutdown error", "err", err)
			}
		}()
		tp = provider
		slog.Info("tracing enabled", "endpoint", cfg.Metrics.Tracing.Endpoint)
	}

	handler := sigv4http.NewHandler(&sigv4http.HandlerConfig{
		CORS:           cfg.CORS,
		Metrics:        m,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		TracerProvider: tp,
	}, validator)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	shutdownDone := make(chan struct{})

	go func() {
		defer close(shutdownDone)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}

		slog.Info("shutting down server...")
		timeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server",
		"addr", addr,
		"database", cfg.Database.Enabled,
		"metrics", cfg.Metrics.Enabled,
		"cors", cfg.CORS.Enabled,
		"tracing", cfg.Metrics.Tracing.Enabled,
	)
	err = server.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	// Wait for in-flight validations before the store is closed.
	<-shutdownDone
	return nil
}
