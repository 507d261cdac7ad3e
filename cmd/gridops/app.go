package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hsdfat8/gridops/internal/adapters/advisor"
	"github.com/hsdfat8/gridops/internal/adapters/factory"
	httpAdapter "github.com/hsdfat8/gridops/internal/adapters/http"
	"github.com/hsdfat8/gridops/internal/adapters/redis"
	"github.com/hsdfat8/gridops/internal/config"
	"github.com/hsdfat8/gridops/internal/domain/ports"
	"github.com/hsdfat8/gridops/internal/domain/service"
	"github.com/hsdfat8/gridops/internal/logger"
	"github.com/hsdfat8/gridops/internal/observability"
)

const startupTimeout = 30 * time.Second

// Application holds the application state
type Application struct {
	cfg        *config.Config
	logger     observability.Logger
	adapters   []ports.DatabaseAdapter
	cache      *redis.CacheRepository
	httpServer *httpAdapter.Server
}

func newApplication(cfg *config.Config, log observability.Logger) (*Application, error) {
	app := &Application{cfg: cfg, logger: log}
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	store, err := app.initializeRepositories(ctx)
	if err != nil {
		return nil, err
	}

	var cache ports.CacheRepository
	if c := app.initializeCache(ctx); c != nil {
		cache = c
	}

	gridService := service.NewGridService(store, cache, app.initializeAdvisor(), service.Options{
		SummaryTTL: cfg.Cache.SummaryTTL,
		SampleSize: cfg.AI.SampleSize,
	})
	log.Info("✓ Grid service initialized")

	if err := app.initializeAdmin(ctx, gridService); err != nil {
		return nil, err
	}

	if cfg.Metrics.Enabled {
		logger.InitMetrics()
	}
	app.httpServer = app.initializeHTTPServer(gridService)
	return app, nil
}

// initializeRepositories connects the configured backends
func (app *Application) initializeRepositories(ctx context.Context) (*ports.Store, error) {
	dbFactory := factory.NewDatabaseAdapterFactory()
	store, adapters, err := dbFactory.BuildStore(ctx, factory.FromConfig(app.cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}
	app.adapters = adapters
	app.logger.Infow("✓ Repositories initialized", "type", app.cfg.Database.Type, "timeseries_type", app.cfg.Database.TimeSeriesType)
	return store, nil
}

// initializeCache connects Redis when enabled. An unreachable cache is
// logged and skipped; the summary is then computed on every request.
func (app *Application) initializeCache(ctx context.Context) *redis.CacheRepository {
	if !app.cfg.Cache.Enabled {
		app.logger.Info("Summary cache disabled")
		return nil
	}

	rc := app.cfg.Cache.Redis
	cache := redis.NewCacheRepository(redis.NewClient(redis.Config{
		Host:     rc.Host,
		Port:     rc.Port,
		Password: rc.Password,
		DB:       rc.DB,
	}))
	if err := cache.Ping(ctx); err != nil {
		app.logger.Warnw("Redis unreachable, continuing without cache", "host", rc.Host, "port", rc.Port, "error", err)
		_ = cache.Close()
		return nil
	}

	app.cache = cache
	app.logger.Infow("✓ Redis cache connected", "host", rc.Host, "port", rc.Port)
	return cache
}

// initializeAdvisor returns nil without an API key so analyses use the fallback
func (app *Application) initializeAdvisor() ports.Advisor {
	ai := app.cfg.AI
	if ai.APIKey == "" {
		app.logger.Info("OPENAI_API_KEY not set, AI analyses will return fallbacks")
		return nil
	}

	app.logger.Infow("✓ AI advisor enabled", "model", ai.Model, "base_url", ai.BaseURL)
	return advisor.NewOpenAIAdvisor(advisor.Config{
		APIKey:     ai.APIKey,
		BaseURL:    ai.BaseURL,
		Model:      ai.Model,
		Timeout:    ai.Timeout,
		MaxRetries: ai.MaxRetries,
	})
}

// initializeAdmin creates the configured administrator on first start.
// Self-registration only yields operators, so this is how a deployment
// gets its first admin.
func (app *Application) initializeAdmin(ctx context.Context, gridService *service.GridService) error {
	admin := app.cfg.Admin
	if admin.Password == "" {
		app.logger.Info("Admin bootstrap disabled (GRIDOPS_ADMIN_PASSWORD not set)")
		return nil
	}

	user, created, err := gridService.BootstrapAdmin(ctx, admin.Username, admin.Password)
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}
	if created {
		app.logger.Infow("✓ Administrator created", "username", user.Username, "user_id", user.ID)
	}
	return nil
}

// initializeHTTPServer builds the router and server
func (app *Application) initializeHTTPServer(gridService ports.GridService) *httpAdapter.Server {
	cfg := app.cfg

	sessions := httpAdapter.NewSessionManager(httpAdapter.SessionConfig{
		Secret:     cfg.Session.Secret,
		CookieName: cfg.Session.CookieName,
		MaxAge:     cfg.Session.MaxAge,
		Secure:     cfg.Session.Secure,
	})

	opts := httpAdapter.RouterOptions{Production: cfg.IsProduction()}
	if cfg.Metrics.Enabled {
		opts.MetricsPath = cfg.Metrics.Path
	}
	router := httpAdapter.SetupRouter(gridService, sessions, opts)

	return httpAdapter.NewServer(httpAdapter.ServerConfig{
		ListenAddr:      fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		EnableH2C:       cfg.Server.EnableH2C,
	}, router)
}

func (app *Application) start() error {
	if err := app.httpServer.Start(); err != nil {
		return err
	}
	app.logger.Infow("✓ HTTP server listening", "address", app.httpServer.GetAddr(), "h2c", app.cfg.Server.EnableH2C)
	return nil
}

// shutdown performs graceful shutdown of all services
func (app *Application) shutdown() {
	app.logger.Info("Shutting down...")
	ctx := context.Background()

	if err := app.httpServer.Stop(ctx); err != nil {
		app.logger.Errorw("HTTP server shutdown error", "error", err)
	}

	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			app.logger.Warnw("Redis close error", "error", err)
		}
	}

	for _, adapter := range app.adapters {
		if err := adapter.Disconnect(ctx); err != nil {
			app.logger.Errorw("Database disconnect error", "type", adapter.GetType(), "error", err)
		}
	}

	app.logger.Info("Stopped gracefully")
}
