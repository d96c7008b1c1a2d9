package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders(" api-key = abc , broken, x=1,=2 ")
	if diff := cmp.Diff(map[string]string{"api-key": "abc", "x": "1"}, got); diff != "" {
		t.Fatalf("headers (-want +got):\n%s", diff)
	}
	if ParseHeaders("") != nil {
		t.Fatalf("empty input should give nil")
	}
}

func TestInitOTelDisabled(t *testing.T) {
	shutdown := InitOTel(context.Background(), logger.Nop(), OtelConfig{})
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET", "/api/decks", "200", 30*time.Millisecond)
	m.ObserveAPI("GET", "/api/decks", "200", 2*time.Second)
	m.ObserveAPI("POST", "", "500", time.Millisecond)
	m.ObserveUpstream("moxfield", 404, 100*time.Millisecond)
	m.IncManagerOp("sheets", "append_deck", nil)
	m.InflightInc()

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`edh_api_requests_total{method="GET",route="/api/decks",status="200"} 2`,
		`edh_api_requests_total{method="POST",route="unknown",status="500"} 1`,
		`edh_api_request_duration_seconds_bucket{method="GET",route="/api/decks",le="0.05"} 1`,
		`edh_api_request_duration_seconds_bucket{method="GET",route="/api/decks",le="+Inf"} 2`,
		`edh_api_request_duration_seconds_count{method="GET",route="/api/decks"} 2`,
		`edh_api_inflight_requests 1`,
		`edh_upstream_requests_total{provider="moxfield",status="404"} 1`,
		`edh_data_manager_ops_total{backend="sheets",op="append_deck",outcome="ok"} 1`,
		`# TYPE edh_api_request_duration_seconds histogram`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("exposition missing %q\n%s", want, out)
		}
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Second)
	m.InflightInc()
	m.IncManagerOp("db", "x", nil)
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil metrics: %v", err)
	}
}

func TestEscapeLabel(t *testing.T) {
	if got := labelString([]string{"a"}, []string{"x\"y\\z\n"}); got != `{a="x\"y\\z\n"}` {
		t.Fatalf("labelString = %s", got)
	}
}
