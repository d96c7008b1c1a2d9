package gcp

import (
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/yungbote/edh-dashboard-backend/internal/platform/envutil"
)

// ClientOptions authenticates API clients as the signed-in user. GOOGLE_API_ENDPOINT
// redirects every client to an emulator or test server.
func ClientOptions(ts oauth2.TokenSource, extra ...option.ClientOption) []option.ClientOption {
	opts := []option.ClientOption{option.WithTokenSource(ts)}
	if ep := strings.TrimSpace(envutil.String("GOOGLE_API_ENDPOINT", "")); ep != "" {
		if !strings.HasSuffix(ep, "/") {
			ep += "/"
		}
		opts = append(opts, option.WithEndpoint(ep))
	}
	return append(opts, extra...)
}
