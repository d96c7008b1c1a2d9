package decks

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/yungbote/edh-dashboard-backend/internal/data/repos/testutil"
	"github.com/yungbote/edh-dashboard-backend/internal/domain"
	"github.com/yungbote/edh-dashboard-backend/internal/pkg/pointers"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/dbctx"
	"github.com/yungbote/edh-dashboard-backend/internal/stats"
)

func TestStatsRepoUnsupportedOnSQLite(t *testing.T) {
	repo := NewStatsRepo(testutil.SQLite(t), testutil.Logger(t))
	if repo.Supported() {
		t.Fatalf("sqlite should not run the postgres aggregates")
	}
}

// The SQL aggregates must agree with the in-memory aggregation over the same games.
func TestStatsRepoMatchesInMemoryAggregation(t *testing.T) {
	pg := testutil.Postgres(t)
	tx := testutil.Tx(t, pg)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	testutil.SeedUser(t, ctx, tx, "stats-user")
	alpha := testutil.SeedDeck(t, ctx, tx, "stats-user", "Deck Alpha")
	beta := testutil.SeedDeck(t, ctx, tx, "stats-user", "Deck Beta")
	testutil.SeedDeck(t, ctx, tx, "stats-user", "Unplayed")

	f := pointers.Float64
	var games []*domain.Game
	games = append(games,
		testutil.SeedGame(t, ctx, tx, alpha, domain.Game{Winner: f(1), Fun: f(4), P2Fun: f(3), P3Fun: f(3), P4Fun: f(3), EstBracket: f(3)}),
		testutil.SeedGame(t, ctx, tx, beta, domain.Game{Winner: f(2), Fun: f(2), P2Fun: f(3), P3Fun: f(3), P4Fun: f(2), EstBracket: f(2)}),
		testutil.SeedGame(t, ctx, tx, alpha, domain.Game{Winner: f(1), Fun: f(5), P2Fun: f(4), P3Fun: f(4), P4Fun: f(4), EstBracket: f(4)}),
		testutil.SeedGame(t, ctx, tx, beta, domain.Game{Winner: f(0), Fun: f(1), P2Fun: f(5)}),
		testutil.SeedGame(t, ctx, tx, beta, domain.Game{Winner: f(2.5), Fun: f(3)}),
	)

	repo := NewStatsRepo(pg, testutil.Logger(t))
	if !repo.Supported() {
		t.Fatalf("postgres should be supported")
	}

	approx := cmpopts.EquateApprox(0, 1e-9)

	got, err := repo.Summary(dbc, "stats-user", "")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	want := stats.FromGames(games)
	if diff := cmp.Diff(&want, got, approx); diff != "" {
		t.Fatalf("Summary mismatch (-want +got):\n%s", diff)
	}

	deckOnly, err := repo.Summary(dbc, "stats-user", alpha.ID)
	if err != nil || deckOnly == nil || deckOnly.TotalGames != 2 || deckOnly.Wins != 2 {
		t.Fatalf("Summary for deck: %+v %v", deckOnly, err)
	}

	rows, err := repo.DeckRows(dbc, "stats-user")
	if err != nil {
		t.Fatalf("DeckRows: %v", err)
	}
	stats.ApplyUsage(rows)
	wantRows := stats.DeckRows(games, []*domain.Deck{alpha, beta})
	if diff := cmp.Diff(wantRows, rows, approx); diff != "" {
		t.Fatalf("DeckRows mismatch (-want +got):\n%s", diff)
	}

	empty, err := repo.Summary(dbc, "nobody", "")
	if err != nil || empty != nil {
		t.Fatalf("Summary for a user without games should be nil: %+v %v", empty, err)
	}
}
