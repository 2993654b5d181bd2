// Package control wires the application together and manages its lifecycle.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/davgn/waymeta/internal/cache"
	"github.com/davgn/waymeta/internal/core/config"
	"github.com/davgn/waymeta/internal/health"
	"github.com/davgn/waymeta/internal/infra/storage"
	"github.com/davgn/waymeta/internal/infra/storage/memory"
	"github.com/davgn/waymeta/internal/infra/storage/postgres"
	"github.com/davgn/waymeta/internal/parser"
	"github.com/davgn/waymeta/internal/recovery"
	"github.com/davgn/waymeta/internal/throttle"
	"github.com/davgn/waymeta/internal/wayback"
)

// App is the main application struct holding all wired components.
type App struct {
	cfg          *config.AppConfig
	service      *recovery.Service
	db           *postgres.DB
	redisStore   *cache.RedisStore
	cachePruner  *cache.Pruner
	healthMon    *health.Monitor
	healthServer *health.Server
	log          *slog.Logger
}

// NewApp initializes storage, cache, the archive client, and the recovery
// pipeline from configuration. With no database URL it falls back to
// in-memory storage, which only makes sense for local experimentation.
func NewApp(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) (*App, error) {
	app := &App{cfg: cfg, log: log, healthMon: health.NewMonitor()}

	// 1. Storage
	var (
		videos   storage.VideoRepository
		channels storage.ChannelRepository
		tags     storage.TagRepository
		attempts storage.AttemptRepository
	)
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		app.db = db
		videos = postgres.NewVideoRepo(db)
		channels = postgres.NewChannelRepo(db)
		tags = postgres.NewTagRepo(db)
		attempts = postgres.NewAttemptRepo(db)
		app.healthMon.Register("database", health.CheckerFunc(db.Health), true)
		log.Info("Using PostgreSQL storage")
	} else {
		store := memory.NewMemoryStorage()
		videos = memory.NewVideoRepo(store)
		channels = memory.NewChannelRepo(store)
		tags = memory.NewTagRepo(store)
		attempts = memory.NewAttemptRepo(store)
		log.Info("Using Memory storage")
	}

	// 2. Snapshot cache
	var store cache.Store
	switch cfg.Cache.Backend {
	case "redis":
		rs, err := cache.NewRedisStore(cfg.Cache.Redis, cfg.Wayback.CacheTTL, log)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis cache: %w", err)
		}
		app.redisStore = rs
		store = rs
		app.healthMon.Register("cache", health.CheckerFunc(rs.Health), false)
		log.Info("Using Redis snapshot cache")
	case "file", "":
		fs, err := cache.NewFileStore(cfg.Cache.Dir, log)
		if err != nil {
			return nil, fmt.Errorf("failed to init file cache: %w", err)
		}
		store = fs
		app.cachePruner = cache.NewPruner(cfg.Cache.Dir, cfg.Wayback.CacheTTL, log)
		log.Info("Using file snapshot cache", "dir", cfg.Cache.Dir)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}

	// 3. Archive clients share one limiter so the CDX index and the page
	// fetches stay under a single politeness budget.
	limiter := throttle.NewLimiter(cfg.Wayback.RateLimit)
	cdx := wayback.NewClient(cfg.Wayback, limiter, store, log)
	extractor := parser.NewWaybackExtractor(limiter, cfg.Wayback.RequestTimeout, log)

	// 4. Recovery pipeline
	orch := recovery.NewOrchestrator(cfg.Recovery, cdx, extractor, videos, channels, tags, log)
	app.service = recovery.NewService(cfg.Service, orch, videos, attempts, log)

	app.healthServer = health.NewServer(app.healthMon, cfg.Server.Port)
	return app, nil
}

// Service returns the recovery service.
func (a *App) Service() *recovery.Service {
	return a.service
}

// Start begins serving health and metrics endpoints.
func (a *App) Start(ctx context.Context) error {
	go func() {
		if err := a.healthServer.Start(); err != nil {
			a.log.Debug("Health server stopped", "error", err)
		}
	}()
	if a.cachePruner != nil {
		go a.cachePruner.Start(ctx)
	}
	a.log.Info("Health server started", "port", a.cfg.Server.Port)
	return nil
}

// Stop shuts down the application gracefully.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping...")

	if a.redisStore != nil {
		if err := a.redisStore.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}

	stopCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return a.healthServer.Stop(stopCtx)
}
