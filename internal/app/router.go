package app

import (
	"github.com/yungbote/edh-dashboard-backend/internal/http"
	httpMW "github.com/yungbote/edh-dashboard-backend/internal/http/middleware"
	"github.com/yungbote/edh-dashboard-backend/internal/observability"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
	"github.com/yungbote/edh-dashboard-backend/internal/services"
)

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *http.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewServer(http.RouterConfig{
		Log:         log,
		ServiceName: serviceName,
		CORSOrigins: cfg.CORSOrigins,
		Session: httpMW.SessionConfig{
			Secure: cfg.CookieSecure,
			MaxAge: services.SessionTTL,
		},
		Metrics: metrics,

		AuthHandler:        handlers.Auth,
		AuthMiddleware:     middleware.Auth,
		UserHandler:        handlers.User,
		SheetsHandler:      handlers.Sheets,
		DeckHandler:        handlers.Deck,
		DeckLinkHandler:    handlers.DeckLink,
		TestSessionHandler: handlers.TestSession,
		HealthHandler:      handlers.Health,
	})
}
