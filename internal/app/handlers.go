package app

import (
	httpH "github.com/yungbote/edh-dashboard-backend/internal/http/handlers"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	User        *httpH.UserHandler
	Sheets      *httpH.SheetsHandler
	Deck        *httpH.DeckHandler
	DeckLink    *httpH.DeckLinkHandler
	TestSession *httpH.TestSessionHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(),
		Auth:        httpH.NewAuthHandler(services.Auth),
		User:        httpH.NewUserHandler(services.User),
		Sheets:      httpH.NewSheetsHandler(services.Sheets),
		Deck:        httpH.NewDeckHandler(services.Data),
		DeckLink:    httpH.NewDeckLinkHandler(services.DeckLinks),
		TestSession: httpH.NewTestSessionHandler(cfg.Data.E2E, services.Auth, services.Sessions),
	}
}
