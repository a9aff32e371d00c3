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
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/vellum/internal/api"
	"github.com/starford/vellum/internal/index"
	"github.com/starford/vellum/internal/mcpserver"
	"github.com/starford/vellum/internal/models"
	"github.com/starford/vellum/internal/service"
	"github.com/starford/vellum/internal/sse"
	"github.com/starford/vellum/internal/storage"
)

// runtime holds the components shared by the HTTP and MCP entry points.
type runtime struct {
	cfg    *Config
	logger *slog.Logger
	store  *storage.FS
	db     *index.DB
}

func setup(opts []Option) (*runtime, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("inbox_path", cfg.Inbox.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("inbox_watch", cfg.Inbox.WatchEnabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Inbox.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create inbox dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Inbox.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	// Batches dropped while the process was down are picked up here.
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return &runtime{cfg: cfg, logger: logger, store: store, db: db}, nil
}

func (rt *runtime) watch(ctx context.Context, cb index.EventCallback) error {
	if !rt.cfg.Inbox.WatchEnabled() {
		return nil
	}
	if err := index.Watch(ctx, rt.db, rt.store, rt.cfg.Inbox.Path, rt.logger, cb); err != nil {
		rt.logger.Error("inbox watcher stopped", slog.String("error", err.Error()))
	}
	return nil
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Run starts the HTTP API, the SSE stream and the inbox watcher and blocks
// until ctx is cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts)
	if err != nil {
		return err
	}
	defer rt.db.Close()
	cfg, logger := rt.cfg, rt.logger

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc := service.NewService(rt.db, rt.store, broker)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", healthHandler)
	r.Get("/health/ready", healthHandler)

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Open SSE streams end when the broker closes their channels.
	httpServer.RegisterOnShutdown(broker.Close)

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	// Cancelled once the HTTP server is down so the watcher exits too.
	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return rt.watch(gCtx, func(kind, path string) {
			broker.PublishImportEvent(kind, path)
		})
	})

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
		defer signal.Stop(quit)

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
		stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the annotation tools over stdio. The inbox watcher keeps
// running alongside so imports land while an assistant is connected.
func RunMCP(ctx context.Context, opts ...Option) error {
	rt, err := setup(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	defer rt.db.Close()

	svc := service.NewService(rt.db, rt.store, nil)
	author := models.User{ID: rt.cfg.Client.UserID, Name: rt.cfg.Client.UserName, Type: "user"}
	srv := mcpserver.New(svc, author)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = rt.watch(watchCtx, nil) }()

	rt.logger.Info("Starting MCP stdio server")
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
