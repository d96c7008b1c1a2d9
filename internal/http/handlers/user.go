package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/edh-dashboard-backend/internal/http/response"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/ctxutil"
	"github.com/yungbote/edh-dashboard-backend/internal/services"
)

type UserHandler struct {
	users services.UserService
}

func NewUserHandler(users services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GET /api/me
func (h *UserHandler) GetMe(c *gin.Context) {
	ctx := c.Request.Context()
	me, err := h.users.Me(ctx, ctxutil.SessionID(ctx))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, me)
}

// GET /api/settings
func (h *UserHandler) GetSettings(c *gin.Context) {
	ctx := c.Request.Context()
	settings, err := h.users.Settings(ctx, ctxutil.SessionID(ctx))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, settings)
}

// POST /api/settings/set-database
// body: { "spreadsheetId": "..." }
func (h *UserHandler) SetDatabase(c *gin.Context) {
	var req struct {
		SpreadsheetID string `json:"spreadsheetId" binding:"required"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondErr(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := h.users.LinkSpreadsheet(ctx, ctxutil.SessionID(ctx), req.SpreadsheetID); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
