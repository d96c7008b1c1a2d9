package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

type Config struct {
	DSN string
	// ConnectTimeout bounds the startup retry loop.
	ConnectTimeout time.Duration
	MaxOpenConns   int
	MaxIdleConns   int
}

// NewPostgresService opens cfg.DSN and pings it, retrying with exponential backoff for up
// to cfg.ConnectTimeout so the API can start alongside a database container.
func NewPostgresService(ctx context.Context, logg *logger.Logger, cfg Config) (*PostgresService, error) {
	serviceLog := logg.With("service", "PostgresService")
	dsn := cfg.DSN
	if dsn == "" {
		return nil, fmt.Errorf("postgres not configured")
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 30 * time.Second
	}
	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.InitialInterval = 500 * time.Millisecond
	retryBackoff.MaxInterval = 5 * time.Second
	retryBackoff.MaxElapsedTime = connectTimeout

	var db *gorm.DB
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormLog,
		})
		if err != nil {
			serviceLog.Warn("Postgres connect failed", "attempt", attempt, "error", err)
			return err
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return backoff.Permanent(err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(pingCtx); err != nil {
			_ = sqlDB.Close()
			serviceLog.Warn("Postgres ping failed", "attempt", attempt, "error", err)
			return err
		}
		db = conn
		return nil
	}, backoff.WithContext(retryBackoff, ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(positive(cfg.MaxOpenConns, 10))
		sqlDB.SetMaxIdleConns(positive(cfg.MaxIdleConns, 5))
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	serviceLog.Info("Connected to Postgres", "attempts", attempt)
	return &PostgresService{db: db, log: serviceLog}, nil
}

// NewWithDB wraps an already opened handle, e.g. an SQLite database in tests.
func NewWithDB(db *gorm.DB, logg *logger.Logger) *PostgresService {
	return &PostgresService{db: db, log: logg.With("service", "PostgresService")}
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func positive(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
