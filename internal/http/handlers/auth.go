package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/edh-dashboard-backend/internal/http/response"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/ctxutil"
	"github.com/yungbote/edh-dashboard-backend/internal/services"
)

type AuthHandler struct {
	auth services.AuthService
}

func NewAuthHandler(auth services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// GET /api/auth/google?returnTo=/decks
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	ctx := c.Request.Context()
	url, err := h.auth.AuthURL(ctx, ctxutil.SessionID(ctx), c.Query("returnTo"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

// GET /api/auth/google/callback?code=...&state=...
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if oauthErr := strings.TrimSpace(c.Query("error")); oauthErr != "" {
		response.RespondError(c, http.StatusBadRequest, "oauth_error", errors.New("Google OAuth error: "+oauthErr))
		return
	}
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_code", errors.New("Missing OAuth code"))
		return
	}
	ctx := c.Request.Context()
	returnTo, err := h.auth.HandleCallback(ctx, ctxutil.SessionID(ctx), code, c.Query("state"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Redirect(http.StatusFound, services.SafeReturnTo(returnTo))
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.auth.Logout(ctx, ctxutil.SessionID(ctx)); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
