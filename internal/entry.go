// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/laguz/internal/api"
	"github.com/starford/laguz/internal/mcpserver"
	"github.com/starford/laguz/internal/raindrop"
	"github.com/starford/laguz/internal/reload"
	"github.com/starford/laguz/internal/scheduler"
	"github.com/starford/laguz/internal/sse"
	"github.com/starford/laguz/internal/state"
	"github.com/starford/laguz/internal/storage"
	"github.com/starford/laguz/internal/syncer"
	pkgconfig "github.com/starford/laguz/pkg/config"
)

// components is the wired core shared by the serve, sync, and mcp modes.
type components struct {
	vault *storage.FS
	store *state.DB
	svc   *syncer.Service
}

func (c *components) close() {
	_ = c.store.Close()
}

// buildComponents constructs the vault, state store, Raindrop client,
// and sync service from the configuration. notify may be nil.
func buildComponents(cfg *Config, logger *slog.Logger, notify func(kind, path string)) (*components, error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	vault, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	store, err := state.Open(cfg.State.Path)
	if err != nil {
		return nil, fmt.Errorf("init state: %w", err)
	}

	client := raindrop.NewClient(cfg.Raindrop.BaseURL, cfg.Raindrop.Token, cfg.Raindrop.PageSize, logger)
	svc := syncer.New(client, vault, store, cfg.Templates, cfg.Raindrop.CollectionID, logger, notify)

	return &components{vault: vault, store: store, svc: svc}, nil
}

func newLogger(cfg *Config, w *os.File) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// Run starts the HTTP service with the given options: scheduler, API,
// SSE broker, and optional config hot reload, supervised by an errgroup.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := newLogger(cfg, os.Stdout)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("state_path", cfg.State.Path),
		slog.Int64("collection_id", cfg.Raindrop.CollectionID),
		slog.String("poll_interval", cfg.Raindrop.PollInterval.String()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

	comps, err := buildComponents(cfg, logger, broker.PublishNoteEvent)
	if err != nil {
		return err
	}
	defer comps.close()

	// Scheduler publishes every finished report to SSE clients.
	sched := scheduler.New(comps.svc, cfg.Raindrop.PollInterval, logger, func(report syncer.Report) {
		broker.PublishSyncReport(report)
	})

	// Build API handler and router.
	h := api.NewHandler(comps.svc, sched.Trigger)
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Periodic sync loop.
	g.Go(func() error {
		if err := sched.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("scheduler error: %w", err)
		}
		return nil
	})

	// Config hot reload: template changes apply without restart.
	if app.configPath != "" {
		configPath := app.configPath
		g.Go(func() error {
			return reload.Watch(gCtx, configPath, logger, func(path string) error {
				next := NewDefaultConfig()
				if err := pkgconfig.Load(path, next); err != nil {
					return err
				}
				comps.svc.SetTemplates(next.Templates)
				return nil
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunSync executes a single sync pass and prints its report as JSON.
func RunSync(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := newLogger(cfg, os.Stderr)

	comps, err := buildComponents(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer comps.close()

	report, err := comps.svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// RunMCP serves the MCP tools over stdio. Logs go to stderr because
// stdout carries the protocol stream.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := newLogger(cfg, os.Stderr)

	comps, err := buildComponents(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer comps.close()

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(comps.vault, comps.svc).ServeStdio()
}
