// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/nbtodo/nbtodo/internal/api"
	"github.com/nbtodo/nbtodo/internal/mcpserver"
	"github.com/nbtodo/nbtodo/internal/notebook"
	"github.com/nbtodo/nbtodo/internal/sse"
	"github.com/nbtodo/nbtodo/internal/storage"
	"github.com/nbtodo/nbtodo/internal/todoservice"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("notebooks_path", cfg.Notebooks.Path),
		slog.String("storage_backend", cfg.Storage.Backend),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure the notebook scan root exists.
	if err := os.MkdirAll(cfg.Notebooks.Path, 0o755); err != nil {
		return fmt.Errorf("create notebooks dir: %w", err)
	}

	// Initialize the manual todo store.
	store, err := openStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer store.Close()

	// Notebook scanner behind a TTL cache.
	scanner := notebook.NewScanner(cfg.Notebooks.Path, logger)
	cache := notebook.NewCache(scanner.Scan, cfg.Notebooks.CacheTTL())

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	// Build the todo service and API router. The broker doubles as the
	// mutation notifier and the /events handler.
	svc := todoservice.NewService(store, cache, logger)
	apiRouter := api.NewRouter(svc, broker, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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

	// Mount API routes (including /api/events) under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start the notebook watcher with the SSE callback. The watcher only
	// feeds change hints to clients; todo freshness comes from the cache TTL.
	if cfg.Notebooks.Watch {
		g.Go(func() error {
			if err := notebook.Watch(gCtx, cfg.Notebooks.Path, logger, func(kind, path string) {
				broker.PublishNotebookEvent(kind, path)
			}); err != nil {
				logger.Warn("notebook watcher stopped", slog.String("error", err.Error()))
			}
			return nil
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

		// Closing the broker releases blocked SSE handlers so Shutdown can
		// drain them.
		broker.Close()

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

// RunMCP serves the MCP stdio server against the same configuration. The
// stdio transport owns its lifetime: it runs until stdin closes.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	cfg := app.config

	// Log to stderr: stdout carries the MCP protocol stream.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Notebooks.Path, 0o755); err != nil {
		return fmt.Errorf("create notebooks dir: %w", err)
	}

	store, err := openStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer store.Close()

	scanner := notebook.NewScanner(cfg.Notebooks.Path, logger)
	cache := notebook.NewCache(scanner.Scan, cfg.Notebooks.CacheTTL())
	svc := todoservice.NewService(store, cache, logger)

	logger.Info("MCP server starting on stdio",
		slog.String("notebooks_path", cfg.Notebooks.Path),
		slog.String("storage_backend", cfg.Storage.Backend))

	return mcpserver.New(svc).ServeStdio()
}

// openStore builds the configured manual todo store backend.
func openStore(cfg StorageConfig) (storage.Provider, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	switch cfg.Backend {
	case StorageBackendSQLite:
		return storage.OpenSQLite(cfg.Path)
	default:
		return storage.NewFile(cfg.Path)
	}
}
