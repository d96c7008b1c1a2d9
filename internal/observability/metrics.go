package observability

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

// Metrics is a small Prometheus text-format registry for the API process.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge
	upstream    *CounterVec
	upstreamLat *HistogramVec
	managerOps  *CounterVec
	pgStats     *GaugeVec
	redisUp     *Gauge
	redisPing   *Gauge
}

// NewMetrics returns an empty registry. Methods on a nil *Metrics are no-ops so callers
// can pass nil when metrics are disabled.
func NewMetrics() *Metrics {
	latency := []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}
	return &Metrics{
		apiRequests: NewCounterVec("edh_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency:  NewHistogramVec("edh_api_request_duration_seconds", "API request latency by method/route.", []string{"method", "route"}, latency),
		apiInflight: NewGauge("edh_api_inflight_requests", "In-flight API requests."),
		upstream:    NewCounterVec("edh_upstream_requests_total", "Calls to deck sites by provider/status.", []string{"provider", "status"}),
		upstreamLat: NewHistogramVec("edh_upstream_request_duration_seconds", "Upstream call latency by provider.", []string{"provider"}, latency),
		managerOps:  NewCounterVec("edh_data_manager_ops_total", "Data manager operations by backend/op/outcome.", []string{"backend", "op", "outcome"}),
		pgStats:     NewGaugeVec("edh_postgres_pool", "database/sql pool statistics.", []string{"stat"}),
		redisUp:     NewGauge("edh_redis_up", "1 when the session store answered the last ping."),
		redisPing:   NewGauge("edh_redis_ping_seconds", "Latency of the last session store ping."),
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) InflightInc() {
	if m != nil {
		m.apiInflight.Add(1)
	}
}

func (m *Metrics) InflightDec() {
	if m != nil {
		m.apiInflight.Add(-1)
	}
}

func (m *Metrics) ObserveUpstream(provider string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	m.upstream.Inc(provider, strconv.Itoa(status))
	m.upstreamLat.Observe(dur.Seconds(), provider)
}

func (m *Metrics) IncManagerOp(backend, op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.managerOps.Inc(backend, op, outcome)
}

// Handler serves the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_ = m.WritePrometheus(w)
	})
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.upstream, m.upstreamLat, m.managerOps,
		m.pgStats, m.redisUp, m.redisPing,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

// StartPostgresCollector samples the connection pool until ctx is done.
func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	go every(ctx, interval, func() {
		sqlDB, err := db.DB()
		if err != nil {
			log.Warn("metrics: postgres stats unavailable", "error", err)
			return
		}
		s := sqlDB.Stats()
		m.pgStats.Set(float64(s.OpenConnections), "open_connections")
		m.pgStats.Set(float64(s.InUse), "in_use")
		m.pgStats.Set(float64(s.Idle), "idle")
		m.pgStats.Set(float64(s.WaitCount), "wait_count")
		m.pgStats.Set(s.WaitDuration.Seconds(), "wait_duration_seconds")
	})
}

// StartRedisCollector pings the session store until ctx is done.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb goredis.UniversalClient, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	go every(ctx, interval, func() {
		start := time.Now()
		if err := rdb.Ping(ctx).Err(); err != nil {
			m.redisUp.Set(0)
			log.Warn("metrics: redis ping failed", "error", err)
			return
		}
		m.redisUp.Set(1)
		m.redisPing.Set(time.Since(start).Seconds())
	})
}

func every(ctx context.Context, interval time.Duration, fn func()) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// series holds one value per label set.
type series struct {
	name, help, kind string
	labelNames       []string

	mu     sync.Mutex
	values map[string]float64
}

func newSeries(name, help, kind string, labels []string) series {
	return series{name: name, help: help, kind: kind, labelNames: labels, values: map[string]float64{}}
}

func (s *series) update(fn func(float64) float64, labels ...string) {
	key := labelString(s.labelNames, labels)
	s.mu.Lock()
	s.values[key] = fn(s.values[key])
	s.mu.Unlock()
}

func (s *series) WritePrometheus(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", s.name, s.help, s.name, s.kind); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range sortedKeys(s.values) {
		if _, err := fmt.Fprintf(w, "%s%s %g\n", s.name, k, s.values[k]); err != nil {
			return err
		}
	}
	return nil
}

type CounterVec struct{ series }

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{newSeries(name, help, "counter", labels)}
}

func (c *CounterVec) Inc(labels ...string) {
	c.update(func(v float64) float64 { return v + 1 }, labels...)
}

type GaugeVec struct{ series }

func NewGaugeVec(name, help string, labels []string) *GaugeVec {
	return &GaugeVec{newSeries(name, help, "gauge", labels)}
}

func (g *GaugeVec) Set(v float64, labels ...string) {
	g.update(func(float64) float64 { return v }, labels...)
}

type Gauge struct{ series }

func NewGauge(name, help string) *Gauge {
	return &Gauge{newSeries(name, help, "gauge", nil)}
}

func (g *Gauge) Set(v float64) { g.update(func(float64) float64 { return v }) }
func (g *Gauge) Add(d float64) { g.update(func(v float64) float64 { return v + d }) }

type HistogramVec struct {
	name, help string
	labelNames []string
	buckets    []float64

	mu     sync.Mutex
	values map[string]*histogram
}

type histogram struct {
	counts []uint64 // cumulative per bucket, last entry is +Inf
	sum    float64
}

func NewHistogramVec(name, help string, labels []string, buckets []float64) *HistogramVec {
	return &HistogramVec{name: name, help: help, labelNames: labels, buckets: buckets, values: map[string]*histogram{}}
}

func (h *HistogramVec) Observe(v float64, labels ...string) {
	key := labelString(h.labelNames, labels)
	h.mu.Lock()
	defer h.mu.Unlock()
	hist, ok := h.values[key]
	if !ok {
		hist = &histogram{counts: make([]uint64, len(h.buckets)+1)}
		h.values[key] = hist
	}
	hist.sum += v
	for i, b := range h.buckets {
		if v <= b {
			hist.counts[i]++
		}
	}
	hist.counts[len(h.buckets)]++
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s histogram\n", h.name, h.help, h.name); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	keys := make([]string, 0, len(h.values))
	for k := range h.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		hist := h.values[k]
		for i, b := range h.buckets {
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, strconv.FormatFloat(b, 'g', -1, 64)), hist.counts[i]); err != nil {
				return err
			}
		}
		total := hist.counts[len(h.buckets)]
		if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n%s_sum%s %g\n%s_count%s %d\n",
			h.name, withLe(k, "+Inf"), total, h.name, k, hist.sum, h.name, k, total); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func labelString(names, values []string) string {
	if len(names) == 0 {
		return ""
	}
	parts := make([]string, len(names))
	for i, name := range names {
		val := "unknown"
		if i < len(values) && values[i] != "" {
			val = values[i]
		}
		parts[i] = name + `="` + escapeLabel(val) + `"`
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func escapeLabel(v string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(v)
}

func withLe(labels, le string) string {
	if labels == "" {
		return `{le="` + le + `"}`
	}
	return strings.TrimSuffix(labels, "}") + `,le="` + le + `"}`
}
