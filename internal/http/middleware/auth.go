package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/edh-dashboard-backend/internal/http/response"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/ctxutil"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
	"github.com/yungbote/edh-dashboard-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

// RequireGoogle rejects requests whose session holds no Google tokens.
func (am *AuthMiddleware) RequireGoogle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ok, err := am.authService.HasTokens(ctx, ctxutil.SessionID(ctx))
		if err != nil {
			am.log.Error("Session lookup failed", append(ctxutil.LogFields(ctx), "error", err)...)
			response.AbortError(c, http.StatusInternalServerError, "session_error", "Session unavailable")
			return
		}
		if !ok {
			response.AbortError(c, http.StatusUnauthorized, "unauthenticated", "Not authenticated with Google")
			return
		}
		c.Next()
	}
}
