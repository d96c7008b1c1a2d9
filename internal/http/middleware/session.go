package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/edh-dashboard-backend/internal/platform/ctxutil"
)

const (
	SessionCookieName = "session_id"
	maxSessionIDLen   = 128
)

type SessionConfig struct {
	Secure bool
	MaxAge time.Duration
}

// Sessions attaches the opaque session id from the session_id cookie, minting a new one when
// the browser has none. The cookie is refreshed on every request so idle sessions slide.
func Sessions(cfg SessionConfig) gin.HandlerFunc {
	maxAge := int(cfg.MaxAge / time.Second)
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookieName)
		sid = strings.TrimSpace(sid)
		if err != nil || !validSessionID(sid) {
			sid = NewSessionID()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookieName, sid, maxAge, "/", "", cfg.Secure, true)
		c.Request = c.Request.WithContext(ctxutil.WithSessionID(c.Request.Context(), sid))
		c.Next()
	}
}

func NewSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func validSessionID(sid string) bool {
	if sid == "" || len(sid) > maxSessionIDLen {
		return false
	}
	for _, r := range sid {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}
