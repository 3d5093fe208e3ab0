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

	"github.com/starford/infinity/internal/api"
	"github.com/starford/infinity/internal/economy"
	"github.com/starford/infinity/internal/generator"
	"github.com/starford/infinity/internal/music"
	"github.com/starford/infinity/internal/profile"
	"github.com/starford/infinity/internal/seedimport"
	"github.com/starford/infinity/internal/seeds"
	"github.com/starford/infinity/internal/sse"
	"github.com/starford/infinity/internal/store"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("seed_dir", cfg.Economy.SeedDir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize the slot store.
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Content generator. A custom provider can be injected via options;
	// the procedural generator is the default.
	gen := app.generator
	if gen == nil {
		gen = generator.NewProcedural()
	}

	// Economy over the store, wired to the broker.
	svc := economy.NewService(db, gen, broker.PublishEconomyEvent)
	if cfg.Economy.StartingBalance > 0 {
		svc.SetStartingBalance(cfg.Economy.StartingBalance)
	}

	// Backfill wallets persisted before the infinity currency existed.
	if err := svc.MigrateWallet(ctx); err != nil {
		return fmt.Errorf("migrate wallet: %w", err)
	}

	mus := music.NewService(db)
	prof := profile.NewService(db)

	// Seed directory: optional. When configured, sync it now and watch it
	// for the lifetime of the process.
	var seedFS seeds.Provider
	if cfg.Economy.SeedDir != "" {
		if err := os.MkdirAll(cfg.Economy.SeedDir, 0o755); err != nil {
			return fmt.Errorf("create seed dir: %w", err)
		}
		fs, err := seeds.NewFS(cfg.Economy.SeedDir)
		if err != nil {
			return fmt.Errorf("init seeds: %w", err)
		}
		seedFS = fs
		if err := seedimport.Sync(ctx, db, svc, seedFS, logger); err != nil {
			logger.Warn("initial seed sync failed", slog.String("error", err.Error()))
		}
	}

	apiRouter := api.NewRouter(svc, mus, prof, db,
		cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, seedFS, cfg.Economy.MediaDir)

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

	// Uploaded audio is served outside the auth group so players can
	// stream it with a plain src URL.
	mediaHandler := api.NewMediaHandler(cfg.Economy.MediaDir)
	r.Get("/media/{filename}", mediaHandler.ServeFile)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start seed watcher when a seed directory is configured.
	if seedFS != nil {
		g.Go(func() error {
			if err := seedimport.Watch(gCtx, db, svc, seedFS, cfg.Economy.SeedDir, logger); err != nil {
				logger.Error("seed watcher error", slog.String("error", err.Error()))
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
