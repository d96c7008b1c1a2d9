package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"

	"github.com/yungbote/edh-dashboard-backend/internal/domain"
	"github.com/yungbote/edh-dashboard-backend/internal/http/response"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/apierr"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/ctxutil"
	"github.com/yungbote/edh-dashboard-backend/internal/services"
)

// TestSessionHandler lets browser tests put a session into a known state. It answers 404
// unless the server runs in e2e mode.
type TestSessionHandler struct {
	enabled  bool
	auth     services.AuthService
	sessions services.SessionService
}

func NewTestSessionHandler(enabled bool, auth services.AuthService, sessions services.SessionService) *TestSessionHandler {
	return &TestSessionHandler{enabled: enabled, auth: auth, sessions: sessions}
}

// POST /api/test/session
// body: { "authenticated"?: bool, "databaseId"?: string|null, "user"?: {...}|null }
//
// An explicit null clears the key; an absent key leaves it alone. Unreadable bodies are
// treated as empty.
func (h *TestSessionHandler) Apply(c *gin.Context) {
	if !h.enabled {
		response.RespondErr(c, apierr.NotFound("Not found"))
		return
	}
	body := map[string]any{}
	if raw, err := c.GetRawData(); err == nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			body = map[string]any{}
		}
	}

	ctx := c.Request.Context()
	sid := ctxutil.SessionID(ctx)
	if authenticated, ok := body["authenticated"].(bool); ok {
		var err error
		if authenticated {
			err = h.auth.SaveTestTokens(ctx, sid)
		} else {
			err = h.auth.ClearTokens(ctx, sid)
		}
		if err != nil {
			response.RespondErr(c, err)
			return
		}
	}
	if v, ok := body["databaseId"]; ok {
		if _, isString := v.(string); v != nil && !isString {
			response.RespondErr(c, apierr.BadRequest("Invalid databaseId"))
			return
		}
		if err := h.sessions.Set(ctx, sid, services.SessionKeyDatabaseSheet, v); err != nil {
			response.RespondErr(c, err)
			return
		}
	}
	if v, ok := body["user"]; ok {
		var user any
		if v != nil {
			var u domain.AuthUser
			if err := mapstructure.Decode(v, &u); err != nil || u.ID == "" {
				response.RespondErr(c, apierr.BadRequest("Invalid user"))
				return
			}
			user = u
		}
		if err := h.sessions.Set(ctx, sid, services.SessionKeyTestUser, user); err != nil {
			response.RespondErr(c, err)
			return
		}
	}
	c.String(http.StatusOK, "ok")
}
