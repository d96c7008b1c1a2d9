package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/edh-dashboard-backend/internal/observability"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
	"github.com/yungbote/edh-dashboard-backend/internal/services"
)

type Services struct {
	Sessions  services.SessionService
	Auth      services.AuthService
	User      services.UserService
	Sheets    services.SheetsService
	Data      services.DataService
	DeckLinks services.DeckLinkService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	sessions := services.NewSessionService(log, clients.Sessions)
	auth := services.NewAuthService(log, services.AuthConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
		StateSecret:  []byte(cfg.SessionSecret),
		E2E:          cfg.Data.E2E,
	}, sessions, reposet.User)
	users := services.NewUserService(log, cfg.Data, auth, sessions, reposet.User)
	sheets := services.NewSheetsService(log, auth, nil)
	data := services.NewDataService(log, cfg.Data, db, reposet.SQL, reposet.User, auth, users, sheets,
		services.WithManagerMetrics(metrics))

	return Services{
		Sessions:  sessions,
		Auth:      auth,
		User:      users,
		Sheets:    sheets,
		Data:      data,
		DeckLinks: services.NewDeckLinkService(log, clients.DeckSites),
	}
}
