// Package main is the entrypoint for the vidforge API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kiranshivaraju/vidforge/internal/api"
	"github.com/kiranshivaraju/vidforge/internal/api/handler"
	mw "github.com/kiranshivaraju/vidforge/internal/api/middleware"
	"github.com/kiranshivaraju/vidforge/internal/api/response"
	"github.com/kiranshivaraju/vidforge/internal/asset"
	"github.com/kiranshivaraju/vidforge/internal/cache"
	"github.com/kiranshivaraju/vidforge/internal/config"
	"github.com/kiranshivaraju/vidforge/internal/enhancer"
	"github.com/kiranshivaraju/vidforge/internal/imagehost"
	"github.com/kiranshivaraju/vidforge/internal/llm"
	"github.com/kiranshivaraju/vidforge/internal/mux"
	"github.com/kiranshivaraju/vidforge/internal/pipeline"
	"github.com/kiranshivaraju/vidforge/internal/sound"
	"github.com/kiranshivaraju/vidforge/internal/staging"
	"github.com/kiranshivaraju/vidforge/internal/store"
	"github.com/kiranshivaraju/vidforge/internal/video"
)

const (
	shutdownTimeout = 30 * time.Second
	// cleanupTimeout bounds how long cancelled handlers get to remove their temp files.
	cleanupTimeout = 10 * time.Second
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env file", "error", err)
	}

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"llm_provider", cfg.LLM.Provider,
		"env", cfg.Server.Env,
		"sound_enabled", cfg.SoundEnabled(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create LLM provider
	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return fmt.Errorf("create LLM provider: %w", err)
	}
	slog.Info("LLM provider initialized", "provider", provider.Name())

	// 6. Build pipeline stages
	area, err := staging.New(cfg.Staging.Dir, cfg.Staging.PublicBaseURL)
	if err != nil {
		return fmt.Errorf("create staging area: %w", err)
	}

	host := imagehost.NewHTTPClient(cfg.ImageHost.BaseURL, cfg.ImageHost.APIKey, cfg.ImageHost.RequestTimeout)
	var resolverOpts []asset.Option
	if cfg.ImageHost.RehostURLs {
		resolverOpts = append(resolverOpts, asset.WithURLRehost())
	}
	videoJob := video.NewJob(
		video.NewHTTPClient(cfg.Video.BaseURL, cfg.Video.APIKey, cfg.Video.RequestTimeout),
		video.WithPollInterval(cfg.Video.PollInterval),
		video.WithMaxAttempts(cfg.Video.MaxPollAttempts),
	)

	var synth sound.Synthesizer
	if cfg.SoundEnabled() {
		synth = sound.NewHTTPClient(cfg.Sound.BaseURL, cfg.Sound.APIKey,
			cfg.Sound.DurationSeconds, cfg.Sound.PromptInfluence, cfg.Sound.RequestTimeout)
	}

	orchestrator := pipeline.NewOrchestrator(
		enhancer.New(provider),
		asset.NewResolver(area, host, resolverOpts...),
		videoJob,
		sound.NewJob(provider, synth, area),
		mux.New(mux.ExecRunner{}, cfg.Mux.FFmpegPath, area, cfg.Mux.MaxConcurrent),
	)

	// 7. Requests and background runs share a server-lifetime context
	pgStore := store.NewPostgresStore(pool)
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	runs := pipeline.NewRunService(baseCtx, orchestrator, pgStore, redisCache, cfg.Server.RunTimeout)
	drain := mw.NewDrain()

	// 8. Build router with dependencies
	deps := api.Dependencies{
		RateLimit: mw.NewRateLimit(redisCache, cfg.Server.RateLimit),
		Drain:     drain,

		HealthHandler:     healthHandler(pgStore, redisCache),
		GenerateHandler:   handler.NewGenerateHandler(orchestrator, cfg.Server.MaxUploadSize),
		TriggerRunHandler: handler.NewTriggerRunHandler(runs, cfg.Server.MaxUploadSize),
		GetRunHandler:     handler.NewGetRunHandler(runs),
		ListRunsHandler:   handler.NewListRunsHandler(runs),
		MediaHandler:      handler.NewMediaHandler(area),
	}

	router := api.NewRouter(deps)

	// 9. Start HTTP server. Synchronous generation holds the connection for
	// the whole pipeline, so there is no write timeout.
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := srv.Shutdown(shutdownCtx)

	// Whatever is still running is cancelled: polling stops and temp files are removed.
	cancelBase()
	if err := waitForCleanup(drain, runs); err != nil {
		slog.Warn("in-flight requests did not finish cleanup", "error", err)
	}
	slog.Info("in-flight work stopped")

	if shutdownErr != nil {
		return fmt.Errorf("server shutdown: %w", shutdownErr)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// waitForCleanup waits for cancelled handlers to return, then for background
// runs to record their outcome.
func waitForCleanup(drain *mw.Drain, runs *pipeline.RunService) error {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	err := drain.Wait(ctx)
	runs.Wait()
	return err
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
