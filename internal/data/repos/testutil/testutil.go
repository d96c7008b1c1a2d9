package testutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/edh-dashboard-backend/internal/data/db"
	"github.com/yungbote/edh-dashboard-backend/internal/domain"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

var errMissingDSN = errors.New("missing TEST_POSTGRES_DSN")

var (
	pgOnce sync.Once
	pg     *gorm.DB
	pgErr  error

	sqliteSeq atomic.Int64
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.Nop()
}

// Postgres returns the shared database named by TEST_POSTGRES_DSN, skipping the test when
// it is unset. Use Tx to isolate writes.
func Postgres(tb testing.TB) *gorm.DB {
	tb.Helper()

	pgOnce.Do(func() {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			pgErr = errMissingDSN
			return
		}

		var err error
		pg, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
			TranslateError: true,
		})
		if err != nil {
			pgErr = err
			return
		}
		if err := db.AutoMigrateAll(pg); err != nil {
			pgErr = err
			return
		}
		pgErr = db.EnsureStatsIndexes(pg)
	})

	if errors.Is(pgErr, errMissingDSN) {
		tb.Skip("set TEST_POSTGRES_DSN to run postgres integration tests")
	}
	if pgErr != nil {
		tb.Fatalf("failed to init test db: %v", pgErr)
	}
	return pg
}

// SQLite returns a fresh, migrated in-memory database private to the calling test.
func SQLite(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := fmt.Sprintf("file:edh_test_%d?mode=memory&cache=shared&_foreign_keys=on", sqliteSeq.Add(1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrateAll(conn); err != nil {
		tb.Fatalf("migrate sqlite: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, id string) *domain.User {
	tb.Helper()
	email := id + "@example.com"
	u := &domain.User{ID: id, Email: &email}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedDeck(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, name string) *domain.Deck {
	tb.Helper()
	d := &domain.Deck{UserID: userID, DeckName: name}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed deck: %v", err)
	}
	return d
}

func SeedGame(tb testing.TB, ctx context.Context, tx *gorm.DB, deck *domain.Deck, g domain.Game) *domain.Game {
	tb.Helper()
	g.UserID = deck.UserID
	g.DeckID = deck.ID
	g.Deck = nil
	if err := tx.WithContext(ctx).Omit("Deck").Create(&g).Error; err != nil {
		tb.Fatalf("seed game: %v", err)
	}
	g.DeckName = deck.DeckName
	return &g
}
