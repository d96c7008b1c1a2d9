package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/edh-dashboard-backend/internal/data/repos"
	"github.com/yungbote/edh-dashboard-backend/internal/datamanager"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

type Repos struct {
	User repos.UserRepo
	SQL  datamanager.SQLRepos
}

// wireRepos returns an empty set when db is nil.
func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	if db == nil {
		return Repos{}
	}
	log.Info("Wiring repos...")
	return Repos{
		User: repos.NewUserRepo(db, log),
		SQL: datamanager.SQLRepos{
			Decks: repos.NewDeckRepo(db, log),
			Games: repos.NewGameRepo(db, log),
			Stats: repos.NewStatsRepo(db, log),
		},
	}
}
