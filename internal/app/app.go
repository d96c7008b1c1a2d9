package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/edh-dashboard-backend/internal/data/db"
	"github.com/yungbote/edh-dashboard-backend/internal/http"
	"github.com/yungbote/edh-dashboard-backend/internal/observability"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Postgres *db.PostgresService
	Server   *http.Server
	Repos    Repos
	Services Services
	Clients  Clients
	Metrics  *observability.Metrics

	shutdownOtel func(context.Context) error
	cancel       context.CancelFunc
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) (*logger.Logger, error) {
	log, err := logger.NewWithOptions(cfg.LogMode, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// New connects to every configured backend and wires the HTTP server. Postgres and
// Redis are optional; without them the app runs on the fixture, sheet and in-memory
// paths.
func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	for _, w := range cfg.warnings() {
		log.Warn(w)
	}

	a := &App{Log: log, Cfg: cfg}
	a.shutdownOtel = observability.InitOTel(ctx, log, cfg.Otel)
	if cfg.MetricsEnabled {
		a.Metrics = observability.NewMetrics()
	}

	var theDB *gorm.DB
	if cfg.Postgres.DSN != "" {
		pg, err := db.NewPostgresService(ctx, log, cfg.Postgres)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		if err := pg.AutoMigrateAll(); err != nil {
			_ = pg.Close()
			a.Close()
			return nil, fmt.Errorf("postgres automigrate: %w", err)
		}
		a.Postgres = pg
		theDB = pg.DB()
	}

	clients, err := wireClients(ctx, log, cfg, a.Metrics)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Clients = clients

	a.Repos = wireRepos(theDB, log)
	a.Services = wireServices(theDB, log, cfg, a.Repos, a.Clients, a.Metrics)
	handlers := wireHandlers(log, cfg, a.Services)
	middleware := wireMiddleware(log, a.Services)
	a.Server = wireServer(log, cfg, handlers, middleware, a.Metrics)
	return a, nil
}

// Start launches the background metric collectors.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Metrics == nil {
		return
	}
	if a.Postgres != nil {
		a.Metrics.StartPostgresCollector(ctx, a.Log, a.Postgres.DB(), a.Cfg.MetricsScrapeInterval)
	}
	if a.Clients.Redis != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis.Client(), a.Cfg.MetricsScrapeInterval)
	}
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("Listening", "addr", addr, "backend", a.Cfg.Data.Backend, "e2e", a.Cfg.Data.E2E)
	return a.Server.Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.Postgres != nil {
		if err := a.Postgres.Close(); err != nil {
			a.Log.Warn("Postgres close failed", "error", err)
		}
	}
	if a.shutdownOtel != nil {
		if err := a.shutdownOtel(context.Background()); err != nil {
			a.Log.Warn("OTel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

// Migrate creates or updates the schema and exits.
func Migrate(ctx context.Context, log *logger.Logger, cfg Config) error {
	if cfg.Postgres.DSN == "" {
		return fmt.Errorf("postgres not configured: set POSTGRES_URL or POSTGRES_HOST")
	}
	pg, err := db.NewPostgresService(ctx, log, cfg.Postgres)
	if err != nil {
		return err
	}
	defer func() { _ = pg.Close() }()
	return pg.AutoMigrateAll()
}
