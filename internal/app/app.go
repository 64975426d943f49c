// Package app wires the composer's components together and runs them.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Centro-Juridico-Internacional/campanero/internal/api"
	"github.com/Centro-Juridico-Internacional/campanero/internal/backend"
	"github.com/Centro-Juridico-Internacional/campanero/internal/config"
	"github.com/Centro-Juridico-Internacional/campanero/internal/history"
	"github.com/Centro-Juridico-Internacional/campanero/internal/metrics"
	"github.com/Centro-Juridico-Internacional/campanero/internal/session"
)

// App is the main application
type App struct {
	config        *config.Config
	sessions      *session.Store
	backend       *backend.Client
	history       *history.Store
	apiServer     *api.Server
	metrics       *metrics.Metrics
	metricsServer *metrics.Server
	logger        *slog.Logger
}

// New creates a new application
func New(cfg *config.Config) (*App, error) {
	logger := setupLogger(cfg.Logging)

	var m *metrics.Metrics
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		m = metrics.New()
		metricsServer = metrics.NewServer(m, cfg.Metrics.ListenAddr, cfg.Metrics.Path, logger.With("component", "metrics"))
	}

	opts := []backend.Option{backend.WithTimeout(cfg.Backend.Timeout)}
	if m != nil {
		opts = append(opts, backend.WithObserver(func(op string, d time.Duration, err error) {
			m.ObserveBackend(op, d.Seconds(), err)
		}))
	}
	client := backend.NewClient(cfg.Backend.BaseURL, opts...)

	hist, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	sessions := session.NewStore(cfg.Sessions.MaxAge, logger)
	apiServer := api.NewServer(cfg, sessions, client, hist, m, logger)

	return &App{
		config:        cfg,
		sessions:      sessions,
		backend:       client,
		history:       hist,
		apiServer:     apiServer,
		metrics:       m,
		metricsServer: metricsServer,
		logger:        logger,
	}, nil
}

// Run starts all components and waits for shutdown
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting campanero",
		"api_addr", a.config.Server.ListenAddr,
		"backend", a.config.Backend.BaseURL,
	)

	// Create context that listens for signals
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Start the session janitor
	go a.sessions.Run(ctx, a.config.Sessions.CleanupInterval)

	// Channel to collect errors
	errCh := make(chan error, 2)

	// Start API server
	go func() {
		if err := a.apiServer.ListenAndServe(); err != nil {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()

	// Start metrics server if enabled
	if a.metricsServer != nil {
		go func() {
			if err := a.metricsServer.ListenAndServe(); err != nil {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	// Probe the backend once at startup so a misconfigured URL shows up
	// in the logs immediately rather than on the first user action.
	if err := a.backend.Health(ctx); err != nil {
		a.logger.Warn("delivery backend not reachable", "error", err)
	}

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.logger.Error("server error", "error", err)
		cancel()
	}

	// Graceful shutdown
	return a.Shutdown(context.Background())
}

// Shutdown gracefully shuts down all components
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := a.apiServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("api server shutdown error", "error", err)
	}

	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("metrics server shutdown error", "error", err)
		}
	}

	if err := a.history.Close(); err != nil {
		a.logger.Error("history close error", "error", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}

// setupLogger creates a logger based on configuration
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
