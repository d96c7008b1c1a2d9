package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/edh-dashboard-backend/internal/platform/ctxutil"
)

func TestSessionsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Sessions(SessionConfig{Secure: true, MaxAge: 24 * time.Hour}))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.SessionID(c.Request.Context()))
	})

	cases := []struct {
		name   string
		cookie string
		keep   bool
	}{
		{"no cookie", "", false},
		{"existing", "0123456789abcdef0123456789abcdef", true},
		{"garbage", "bad id;<script>", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tc.cookie})
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			var set *http.Cookie
			for _, ck := range rec.Result().Cookies() {
				if ck.Name == SessionCookieName {
					set = ck
				}
			}
			if set == nil {
				t.Fatalf("session cookie not set")
			}
			if !set.HttpOnly || !set.Secure || set.SameSite != http.SameSiteLaxMode || set.MaxAge != 86400 {
				t.Fatalf("unexpected cookie attributes %+v", set)
			}
			if set.Value != rec.Body.String() {
				t.Fatalf("context id %q != cookie %q", rec.Body.String(), set.Value)
			}
			if tc.keep && set.Value != tc.cookie {
				t.Fatalf("existing session id replaced: %q", set.Value)
			}
			if !tc.keep && (set.Value == tc.cookie || len(set.Value) != 32) {
				t.Fatalf("expected a fresh 32-char id, got %q", set.Value)
			}
		})
	}
}
