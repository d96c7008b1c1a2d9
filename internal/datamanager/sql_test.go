package datamanager

import (
	"context"
	"net/http"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/edh-dashboard-backend/internal/data/repos"
	"github.com/yungbote/edh-dashboard-backend/internal/data/repos/testutil"
	"github.com/yungbote/edh-dashboard-backend/internal/domain"
	"github.com/yungbote/edh-dashboard-backend/internal/pkg/pointers"
)

func newSQLManager(t *testing.T, db *gorm.DB, userID string) DataManager {
	t.Helper()
	log := testutil.Logger(t)
	return NewSQL(db, log, userID, SQLRepos{
		Decks: repos.NewDeckRepo(db, log),
		Games: repos.NewGameRepo(db, log),
		Stats: repos.NewStatsRepo(db, log),
	})
}

func TestSQLManagerLifecycle(t *testing.T) {
	db := testutil.SQLite(t)
	ctx := context.Background()
	testutil.SeedUser(t, ctx, db, "user-1")
	testutil.SeedUser(t, ctx, db, "user-2")
	m := newSQLManager(t, db, "user-1")
	other := newSQLManager(t, db, "user-2")

	for _, name := range []string{"Deck Alpha", "Deck Beta"} {
		if err := m.AppendDeck(ctx, domain.DeckInput{DeckName: name, TargetBracket: pointers.Float64(3)}); err != nil {
			t.Fatalf("AppendDeck(%s): %v", name, err)
		}
	}
	wantStatus(t, m.AppendDeck(ctx, domain.DeckInput{DeckName: "Deck Alpha"}), http.StatusConflict)
	wantStatus(t, m.AppendGame(ctx, domain.GameInput{DeckName: "Deck Gamma"}), http.StatusNotFound)

	results := []domain.GameInput{
		{DeckName: "Deck Alpha", Winner: pointers.Float64(1), Fun: pointers.Float64(4), P2Fun: pointers.Float64(3)},
		{DeckName: "Deck Alpha", Winner: pointers.Float64(1), Fun: pointers.Float64(5)},
		{DeckName: "Deck Beta", Winner: pointers.Float64(2), Fun: pointers.Float64(2)},
	}
	for _, in := range results {
		if err := m.AppendGame(ctx, in); err != nil {
			t.Fatalf("AppendGame: %v", err)
		}
	}

	decks, err := m.GetDecks(ctx)
	if err != nil || len(decks) != 2 {
		t.Fatalf("GetDecks: %+v %v", decks, err)
	}
	alphaID := decks[0].ID
	if decks[0].DeckName != "Deck Alpha" {
		t.Fatalf("decks should be ordered by name: %+v", decks)
	}
	if got, _ := other.GetDecks(ctx); len(got) != 0 {
		t.Fatalf("decks leaked across users: %+v", got)
	}

	deck, err := m.GetDeckByID(ctx, alphaID)
	if err != nil || deck == nil {
		t.Fatalf("GetDeckByID: %+v %v", deck, err)
	}
	if len(deck.Games) != 2 || deck.Stats == nil || deck.Stats.Wins != 2 || *deck.Stats.AvgFunSelf != 4.5 {
		t.Fatalf("unexpected deck detail: %+v stats=%+v", deck, deck.Stats)
	}
	if got, err := m.GetDeckByID(ctx, "missing"); err != nil || got != nil {
		t.Fatalf("missing deck should be nil, nil: %+v %v", got, err)
	}
	if got, err := other.GetDeckByID(ctx, alphaID); err != nil || got != nil {
		t.Fatalf("deck visible to another user: %+v %v", got, err)
	}

	dash, err := m.GetDashboardStats(ctx)
	if err != nil {
		t.Fatalf("GetDashboardStats: %v", err)
	}
	if dash.Stats == nil || dash.Stats.TotalGames != 3 || dash.Stats.Losses != 1 || len(dash.DeckStats) != 2 {
		t.Fatalf("unexpected dashboard: %+v", dash)
	}
	if dash.DeckStats[0].ID != alphaID {
		t.Fatalf("dashboard rows should carry deck ids: %+v", dash.DeckStats[0])
	}

	empty, err := other.GetDashboardStats(ctx)
	if err != nil || empty.Stats != nil || empty.DeckStats == nil || len(empty.DeckStats) != 0 {
		t.Fatalf("empty dashboard: %+v %v", empty, err)
	}
}

func TestSQLManagerUpdates(t *testing.T) {
	db := testutil.SQLite(t)
	ctx := context.Background()
	testutil.SeedUser(t, ctx, db, "user-1")
	m := newSQLManager(t, db, "user-1")

	alpha := testutil.SeedDeck(t, ctx, db, "user-1", "Deck Alpha")
	testutil.SeedDeck(t, ctx, db, "user-1", "Deck Beta")
	g := testutil.SeedGame(t, ctx, db, alpha, domain.Game{Winner: pointers.Float64(2)})

	stale := domain.DeckUpdateInput{DeckInput: domain.DeckInput{DeckName: "X"}, DeckID: alpha.ID, OriginalName: "Deck Beta"}
	wantStatus(t, m.UpdateDeck(ctx, stale), http.StatusConflict)
	clash := domain.DeckUpdateInput{DeckInput: domain.DeckInput{DeckName: "Deck Beta"}, DeckID: alpha.ID, OriginalName: "Deck Alpha"}
	wantStatus(t, m.UpdateDeck(ctx, clash), http.StatusConflict)
	missing := domain.DeckUpdateInput{DeckInput: domain.DeckInput{DeckName: "X"}, DeckID: "nope", OriginalName: "X"}
	wantStatus(t, m.UpdateDeck(ctx, missing), http.StatusNotFound)

	rename := domain.DeckUpdateInput{DeckInput: domain.DeckInput{DeckName: "Deck Omega"}, DeckID: alpha.ID, OriginalName: "Deck Alpha"}
	if err := m.UpdateDeck(ctx, rename); err != nil {
		t.Fatalf("UpdateDeck: %v", err)
	}
	games, err := m.GetGames(ctx)
	if err != nil || len(games) != 1 || games[0].DeckName != "Deck Omega" {
		t.Fatalf("games should follow the rename: %+v %v", games, err)
	}

	upd := domain.GameUpdateInput{GameID: g.ID, GameInput: domain.GameInput{Winner: pointers.Float64(1), Notes: pointers.String("comeback")}}
	if err := m.UpdateGame(ctx, upd); err != nil {
		t.Fatalf("UpdateGame: %v", err)
	}
	games, _ = m.GetGames(ctx)
	if !games[0].IsWin() || games[0].Notes == nil || *games[0].Notes != "comeback" {
		t.Fatalf("game not updated: %+v", games[0])
	}
	wantStatus(t, m.UpdateGame(ctx, domain.GameUpdateInput{GameID: "nope"}), http.StatusNotFound)
	wantStatus(t, m.DeleteGame(ctx, "nope"), http.StatusNotFound)
	wantStatus(t, m.DeleteGame(ctx, ""), http.StatusBadRequest)
}

func TestSQLManagerDeleteDeck(t *testing.T) {
	db := testutil.SQLite(t)
	ctx := context.Background()
	testutil.SeedUser(t, ctx, db, "user-1")
	m := newSQLManager(t, db, "user-1")

	alpha := testutil.SeedDeck(t, ctx, db, "user-1", "Deck Alpha")
	beta := testutil.SeedDeck(t, ctx, db, "user-1", "Deck Beta")
	testutil.SeedGame(t, ctx, db, alpha, domain.Game{Winner: pointers.Float64(1)})
	testutil.SeedGame(t, ctx, db, alpha, domain.Game{Winner: pointers.Float64(3)})
	kept := testutil.SeedGame(t, ctx, db, beta, domain.Game{Winner: pointers.Float64(1)})

	_, err := m.DeleteDeck(ctx, alpha.ID, "Deck Beta")
	wantStatus(t, err, http.StatusConflict)
	_, err = m.DeleteDeck(ctx, "nope", "Deck Alpha")
	wantStatus(t, err, http.StatusNotFound)

	n, err := m.DeleteDeck(ctx, alpha.ID, "Deck Alpha")
	if err != nil {
		t.Fatalf("DeleteDeck: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deleted games, got %d", n)
	}
	games, _ := m.GetGames(ctx)
	if len(games) != 1 || games[0].ID != kept.ID {
		t.Fatalf("unexpected games after delete: %+v", games)
	}
	if err := m.DeleteGame(ctx, kept.ID); err != nil {
		t.Fatalf("DeleteGame: %v", err)
	}
}
