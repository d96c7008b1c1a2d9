package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/edh-dashboard-backend/internal/data/repos/decks"
	"github.com/yungbote/edh-dashboard-backend/internal/data/repos/user"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type DeckRepo = decks.DeckRepo
type GameRepo = decks.GameRepo
type StatsRepo = decks.StatsRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewDeckRepo(db *gorm.DB, baseLog *logger.Logger) DeckRepo { return decks.NewDeckRepo(db, baseLog) }
func NewGameRepo(db *gorm.DB, baseLog *logger.Logger) GameRepo { return decks.NewGameRepo(db, baseLog) }
func NewStatsRepo(db *gorm.DB, baseLog *logger.Logger) StatsRepo {
	return decks.NewStatsRepo(db, baseLog)
}

// IsUniqueViolation reports whether err was raised by a unique index.
func IsUniqueViolation(err error) bool { return decks.IsUniqueViolation(err) }
