// Package decksites fetches public deck lists from Archidekt and Moxfield.
package decksites

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/yungbote/edh-dashboard-backend/internal/observability"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/apierr"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

const (
	DefaultArchidektURL = "https://archidekt.com"
	DefaultMoxfieldURL  = "https://api.moxfield.com"

	ProviderLabelArchidekt = "Archidekt"
	ProviderLabelMoxfield  = "Moxfield"

	userAgent = "edh-dashboard/1.0"
)

type Config struct {
	ArchidektURL string
	MoxfieldURL  string
	Timeout      time.Duration
	// Every is the minimum spacing between upstream requests.
	Every time.Duration
	Burst int
	// Metrics is optional.
	Metrics *observability.Metrics
}

// Client returns the upstream JSON untouched so callers can proxy it.
type Client interface {
	Archidekt(ctx context.Context, id string) (json.RawMessage, error)
	Moxfield(ctx context.Context, id string) (json.RawMessage, error)
}

type client struct {
	log          *logger.Logger
	httpClient   *http.Client
	limiter      *rate.Limiter
	metrics      *observability.Metrics
	archidektURL string
	moxfieldURL  string
}

func New(log *logger.Logger, cfg Config) Client {
	if cfg.ArchidektURL == "" {
		cfg.ArchidektURL = DefaultArchidektURL
	}
	if cfg.MoxfieldURL == "" {
		cfg.MoxfieldURL = DefaultMoxfieldURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Every <= 0 {
		cfg.Every = 200 * time.Millisecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	return &client{
		log:          log.With("client", "DeckSites"),
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		limiter:      rate.NewLimiter(rate.Every(cfg.Every), cfg.Burst),
		metrics:      cfg.Metrics,
		archidektURL: strings.TrimRight(cfg.ArchidektURL, "/"),
		moxfieldURL:  strings.TrimRight(cfg.MoxfieldURL, "/"),
	}
}

func (c *client) Archidekt(ctx context.Context, id string) (json.RawMessage, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apierr.BadRequest("Missing deck id")
	}
	raw, err := c.get(ctx, ProviderLabelArchidekt, c.archidektURL+"/api/decks/"+url.PathEscape(id)+"/", nil)
	if err != nil {
		return nil, c.upstream(ProviderLabelArchidekt, id, err)
	}
	return raw, nil
}

func (c *client) Moxfield(ctx context.Context, id string) (json.RawMessage, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apierr.BadRequest("Missing deck id")
	}
	// Moxfield rejects requests that do not look like they came from its own site.
	headers := map[string]string{
		"Referer": "https://moxfield.com/",
		"Origin":  "https://moxfield.com",
	}
	raw, err := c.get(ctx, ProviderLabelMoxfield, c.moxfieldURL+"/v2/decks/all/"+url.PathEscape(id), headers)
	if err != nil {
		return nil, c.upstream(ProviderLabelMoxfield, id, err)
	}
	return raw, nil
}

type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("upstream http %d: %s", e.StatusCode, e.Body)
}

func (c *client) get(ctx context.Context, provider, target string, headers map[string]string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(provider, 0, time.Since(start))
		return nil, err
	}
	c.metrics.ObserveUpstream(provider, resp.StatusCode, time.Since(start))
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &httpError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if !json.Valid(raw) {
		return nil, errors.New("upstream returned invalid json")
	}
	return raw, nil
}

// upstream keeps the provider's status so the proxy endpoints can echo it.
func (c *client) upstream(provider, id string, err error) error {
	status := http.StatusBadGateway
	var he *httpError
	if errors.As(err, &he) {
		status = he.StatusCode
	}
	c.log.Warn("Deck site request failed", "provider", provider, "deck_id", id, "status", status, "error", err)
	return apierr.Newf(status, "upstream_error", "Failed to load deck from %s", provider)
}
