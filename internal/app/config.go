package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/edh-dashboard-backend/internal/clients/decksites"
	"github.com/yungbote/edh-dashboard-backend/internal/clients/redis"
	"github.com/yungbote/edh-dashboard-backend/internal/data/db"
	"github.com/yungbote/edh-dashboard-backend/internal/observability"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/envutil"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
	"github.com/yungbote/edh-dashboard-backend/internal/services"
)

const defaultSessionSecret = "edh-dashboard-dev-secret"

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type Config struct {
	Port    string
	LogMode string
	Log     logger.Options

	Data     services.DataConfig
	Postgres db.Config
	Redis    redis.Options
	Google   GoogleConfig

	SessionSecret string
	CookieSecure  bool
	CORSOrigins   []string

	MetricsEnabled        bool
	MetricsScrapeInterval time.Duration
	Otel                  observability.OtelConfig
	DeckSites             decksites.Config
}

// LoadDotenv reads the first existing file of paths (".env" by default) without
// overriding variables already set in the environment.
func LoadDotenv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

func LoadConfig() Config {
	cfg := Config{
		Port:    envutil.String("PORT", "8080"),
		LogMode: envutil.String("LOG_MODE", "development"),
		Log: logger.Options{
			Level:      envutil.String("LOG_LEVEL", ""),
			File:       envutil.String("LOG_FILE", ""),
			MaxSizeMB:  envutil.Int("LOG_FILE_MAX_SIZE_MB", 0),
			MaxBackups: envutil.Int("LOG_FILE_MAX_BACKUPS", 0),
			MaxAgeDays: envutil.Int("LOG_FILE_MAX_AGE_DAYS", 0),
		},
		Data: services.DataConfig{
			Backend: envutil.String("DATA_BACKEND", services.BackendDB),
			E2E:     envutil.Bool("E2E_TEST_MODE", false),
		},
		Postgres: db.Config{
			DSN:            postgresDSN(),
			ConnectTimeout: time.Duration(envutil.Int("POSTGRES_CONNECT_TIMEOUT_SECONDS", 30)) * time.Second,
			MaxOpenConns:   envutil.Int("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:   envutil.Int("POSTGRES_MAX_IDLE_CONNS", 5),
		},
		Redis: redis.Options{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			Prefix:   envutil.String("REDIS_KEY_PREFIX", "edh:"),
		},
		Google: GoogleConfig{
			ClientID:     envutil.String("GOOGLE_CLIENT_ID", ""),
			ClientSecret: envutil.String("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  envutil.String("GOOGLE_REDIRECT_URI", "http://localhost:8080/api/auth/google/callback"),
		},
		SessionSecret: envutil.String("SESSION_SECRET", defaultSessionSecret),
		CookieSecure:  envutil.Bool("COOKIE_SECURE", false),
		CORSOrigins:   envutil.List("CORS_ALLOW_ORIGINS", nil),

		MetricsEnabled:        envutil.Bool("METRICS_ENABLED", false),
		MetricsScrapeInterval: time.Duration(envutil.Int("METRICS_SCRAPE_INTERVAL_SECONDS", 10)) * time.Second,
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", observability.DefaultServiceName),
			Environment: envutil.String("OTEL_ENVIRONMENT", envutil.String("LOG_MODE", "development")),
			Version:     envutil.String("OTEL_SERVICE_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1),
		},
		DeckSites: decksites.Config{
			ArchidektURL: envutil.String("ARCHIDEKT_BASE_URL", decksites.DefaultArchidektURL),
			MoxfieldURL:  envutil.String("MOXFIELD_BASE_URL", decksites.DefaultMoxfieldURL),
			Timeout:      envutil.Duration("DECK_SITES_TIMEOUT", 10*time.Second),
			Every:        envutil.Duration("DECK_SITES_MIN_INTERVAL", 200*time.Millisecond),
			Burst:        envutil.Int("DECK_SITES_BURST", 5),
		},
	}
	cfg.Data.DBConfigured = cfg.Postgres.DSN != ""
	return cfg
}

// postgresDSN prefers POSTGRES_URL and otherwise assembles one from the POSTGRES_* parts.
// It is empty when no database is configured.
func postgresDSN() string {
	if url := envutil.String("POSTGRES_URL", ""); url != "" {
		return url
	}
	host := envutil.String("POSTGRES_HOST", "")
	if host == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		envutil.String("POSTGRES_USER", "postgres"),
		envutil.String("POSTGRES_PASSWORD", ""),
		host,
		envutil.String("POSTGRES_PORT", "5432"),
		envutil.String("POSTGRES_NAME", "edh_dashboard"),
		envutil.String("POSTGRES_SSLMODE", "disable"),
	)
}

// warnings lists settings that are fine locally but wrong in production.
func (c Config) warnings() []string {
	var out []string
	if c.SessionSecret == defaultSessionSecret {
		out = append(out, "SESSION_SECRET is not set; OAuth state uses a development key")
	}
	if !c.Data.E2E && c.Google.ClientID == "" {
		out = append(out, "GOOGLE_CLIENT_ID is not set; Google sign-in will fail")
	}
	if !c.Data.E2E && c.Data.Backend != services.BackendSheets && c.Postgres.DSN == "" {
		out = append(out, "no Postgres configured; deck endpoints will answer 500")
	}
	return out
}
