package datamanager

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/yungbote/edh-dashboard-backend/internal/domain"
	"github.com/yungbote/edh-dashboard-backend/internal/observability"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/apierr"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

func TestInstrumentPassThrough(t *testing.T) {
	metrics := observability.NewMetrics()
	m := Instrument("fixtures", NewFixtures(logger.Nop(), nil), metrics)
	ctx := context.Background()

	decks, err := m.GetDecks(ctx)
	if err != nil || len(decks) != 2 {
		t.Fatalf("GetDecks: %d %v", len(decks), err)
	}
	if err := m.AppendGame(ctx, domain.GameInput{DeckName: "Missing"}); apierr.StatusOf(err) != 404 {
		t.Fatalf("AppendGame error should pass through, got %v", err)
	}
	n, err := m.DeleteDeck(ctx, "deck-2", "Deck Beta")
	if err != nil || n != 1 {
		t.Fatalf("DeleteDeck: %d %v", n, err)
	}

	var buf bytes.Buffer
	if err := metrics.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	for _, want := range []string{
		`edh_data_manager_ops_total{backend="fixtures",op="get_decks",outcome="ok"} 1`,
		`edh_data_manager_ops_total{backend="fixtures",op="append_game",outcome="error"} 1`,
		`edh_data_manager_ops_total{backend="fixtures",op="delete_deck",outcome="ok"} 1`,
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("missing %q in\n%s", want, buf.String())
		}
	}
}

func TestInstrumentNil(t *testing.T) {
	if Instrument("db", nil, nil) != nil {
		t.Fatalf("nil manager should stay nil")
	}
}
