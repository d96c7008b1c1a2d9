package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/edh-dashboard-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Deck{},
		&domain.Game{},
	)
}

// EnsureStatsIndexes adds the Postgres-only indexes the dashboard aggregates lean on.
func EnsureStatsIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_games_user_deck
		ON games (user_id, deck_id);
	`).Error; err != nil {
		return fmt.Errorf("create idx_games_user_deck: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_decks_user_name_lower
		ON decks (user_id, lower(name));
	`).Error; err != nil {
		return fmt.Errorf("create idx_decks_user_name_lower: %w", err)
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureStatsIndexes(s.db); err != nil {
		s.log.Error("Stats index migration failed", "error", err)
		return err
	}
	return nil
}
