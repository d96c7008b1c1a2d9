package http

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/edh-dashboard-backend/internal/http/handlers"
	httpMW "github.com/yungbote/edh-dashboard-backend/internal/http/middleware"
	"github.com/yungbote/edh-dashboard-backend/internal/observability"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Session     httpMW.SessionConfig
	Metrics     *observability.Metrics

	AuthHandler        *httpH.AuthHandler
	AuthMiddleware     *httpMW.AuthMiddleware
	UserHandler        *httpH.UserHandler
	SheetsHandler      *httpH.SheetsHandler
	DeckHandler        *httpH.DeckHandler
	DeckLinkHandler    *httpH.DeckLinkHandler
	TestSessionHandler *httpH.TestSessionHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	httpH.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.Sessions(cfg.Session))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Auth
		if cfg.AuthHandler != nil {
			api.GET("/auth/google", cfg.AuthHandler.GoogleLogin)
			api.GET("/auth/google/callback", cfg.AuthHandler.GoogleCallback)
			api.POST("/auth/logout", cfg.AuthHandler.Logout)
		}

		// User
		if cfg.UserHandler != nil {
			api.GET("/me", cfg.UserHandler.GetMe)
			api.GET("/settings", cfg.UserHandler.GetSettings)
			api.POST("/settings/set-database", cfg.UserHandler.SetDatabase)
		}

		// Decks, games, dashboard
		if cfg.DeckHandler != nil {
			api.GET("/decks", cfg.DeckHandler.ListDecks)
			api.GET("/decks/:deckId", cfg.DeckHandler.GetDeck)
			api.POST("/decks/append", cfg.DeckHandler.AppendDeck)
			api.POST("/decks/update", cfg.DeckHandler.UpdateDeck)
			api.POST("/decks/delete", cfg.DeckHandler.DeleteDeck)

			api.GET("/games", cfg.DeckHandler.ListGames)
			api.POST("/games/append", cfg.DeckHandler.AppendGame)
			api.POST("/games/update", cfg.DeckHandler.UpdateGame)
			api.POST("/games/delete", cfg.DeckHandler.DeleteGame)

			api.GET("/dashboard", cfg.DeckHandler.Dashboard)
		}

		// Deck sites
		if cfg.DeckLinkHandler != nil {
			api.GET("/archidekt/:id", cfg.DeckLinkHandler.Archidekt)
			api.GET("/moxfield/:id", cfg.DeckLinkHandler.Moxfield)
			api.GET("/deck-links/preview", cfg.DeckLinkHandler.Preview)
		}

		// E2E
		if cfg.TestSessionHandler != nil {
			api.POST("/test/session", cfg.TestSessionHandler.Apply)
		}
	}

	google := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			google.Use(cfg.AuthMiddleware.RequireGoogle())
		}

		// Drive + Sheets
		if cfg.SheetsHandler != nil {
			google.GET("/drive/list-spreadsheets", cfg.SheetsHandler.ListSpreadsheets)
			google.GET("/sheets/read", cfg.SheetsHandler.Read)
			google.POST("/sheets/create", cfg.SheetsHandler.Create)
			google.POST("/sheets/create-sample", cfg.SheetsHandler.CreateSample)
		}
	}

	return r
}
