package decks

import (
	"context"
	"testing"

	"github.com/yungbote/edh-dashboard-backend/internal/data/repos/testutil"
	"github.com/yungbote/edh-dashboard-backend/internal/domain"
	"github.com/yungbote/edh-dashboard-backend/internal/pkg/pointers"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/dbctx"
)

func TestGameRepo(t *testing.T) {
	db := testutil.SQLite(t)
	ctx := context.Background()
	dbc := dbctx.New(ctx)
	testutil.SeedUser(t, ctx, db, "user-1")
	testutil.SeedUser(t, ctx, db, "user-2")
	alpha := testutil.SeedDeck(t, ctx, db, "user-1", "Alpha")
	beta := testutil.SeedDeck(t, ctx, db, "user-1", "Beta")
	other := testutil.SeedDeck(t, ctx, db, "user-2", "Alpha")

	repo := NewGameRepo(db, testutil.Logger(t))

	g1 := &domain.Game{UserID: "user-1", DeckID: alpha.ID, Winner: pointers.Float64(1), Fun: pointers.Float64(4)}
	g2 := &domain.Game{UserID: "user-1", DeckID: beta.ID, Winner: pointers.Float64(2), Notes: pointers.String("close")}
	g3 := &domain.Game{UserID: "user-1", DeckID: alpha.ID, Winner: pointers.Float64(3)}
	for _, g := range []*domain.Game{g1, g2, g3} {
		if err := repo.Create(dbc, g); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	testutil.SeedGame(t, ctx, db, other, domain.Game{Winner: pointers.Float64(1)})

	all, err := repo.ListByUser(dbc, "user-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListByUser: expected 3 games, got %d", len(all))
	}
	names := map[string]string{}
	for _, g := range all {
		names[g.ID] = g.DeckName
	}
	if names[g1.ID] != "Alpha" || names[g2.ID] != "Beta" {
		t.Fatalf("ListByUser: deck names not resolved: %v", names)
	}

	byDeck, err := repo.ListByDeck(dbc, "user-1", alpha.ID)
	if err != nil || len(byDeck) != 2 {
		t.Fatalf("ListByDeck: len=%d err=%v", len(byDeck), err)
	}
	if n, err := repo.CountByDeck(dbc, "user-1", alpha.ID); err != nil || n != 2 {
		t.Fatalf("CountByDeck: n=%d err=%v", n, err)
	}

	got, err := repo.GetByID(dbc, "user-1", g2.ID)
	if err != nil || got == nil || got.DeckName != "Beta" || got.Notes == nil || *got.Notes != "close" {
		t.Fatalf("GetByID: %+v %v", got, err)
	}
	if got, err := repo.GetByID(dbc, "user-2", g2.ID); err != nil || got != nil {
		t.Fatalf("GetByID should be scoped to the owner: %+v %v", got, err)
	}

	n, err := repo.Update(dbc, "user-1", g2.ID, domain.GameInput{Winner: pointers.Float64(1), Fun: pointers.Float64(5)})
	if err != nil || n != 1 {
		t.Fatalf("Update: n=%d err=%v", n, err)
	}
	got, _ = repo.GetByID(dbc, "user-1", g2.ID)
	if !got.IsWin() || got.Notes != nil || got.Fun == nil || *got.Fun != 5 {
		t.Fatalf("Update: unexpected row %+v", got)
	}

	if n, err := repo.Delete(dbc, "user-1", g1.ID); err != nil || n != 1 {
		t.Fatalf("Delete: n=%d err=%v", n, err)
	}
	if n, err := repo.Delete(dbc, "user-2", g3.ID); err != nil || n != 0 {
		t.Fatalf("Delete of a foreign game should touch nothing: n=%d err=%v", n, err)
	}
	if n, err := repo.DeleteByDeck(dbc, "user-1", alpha.ID); err != nil || n != 1 {
		t.Fatalf("DeleteByDeck: n=%d err=%v", n, err)
	}
}
