package decks

import (
	"context"
	"testing"

	"github.com/yungbote/edh-dashboard-backend/internal/data/repos/testutil"
	"github.com/yungbote/edh-dashboard-backend/internal/domain"
	"github.com/yungbote/edh-dashboard-backend/internal/pkg/pointers"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/dbctx"
)

func TestDeckRepo(t *testing.T) {
	db := testutil.SQLite(t)
	ctx := context.Background()
	dbc := dbctx.New(ctx)
	testutil.SeedUser(t, ctx, db, "user-1")
	testutil.SeedUser(t, ctx, db, "user-2")

	repo := NewDeckRepo(db, testutil.Logger(t))

	beta := &domain.Deck{UserID: "user-1", DeckName: "Beta", TargetBracket: pointers.Float64(2)}
	alpha := &domain.Deck{UserID: "user-1", DeckName: "Alpha"}
	for _, d := range []*domain.Deck{beta, alpha} {
		if err := repo.Create(dbc, d); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if d.ID == "" {
			t.Fatalf("Create: id should be assigned")
		}
	}

	dup := &domain.Deck{UserID: "user-1", DeckName: "Alpha"}
	if err := repo.Create(dbc, dup); !IsUniqueViolation(err) {
		t.Fatalf("Create duplicate: expected unique violation, got %v", err)
	}
	if err := repo.Create(dbc, &domain.Deck{UserID: "user-2", DeckName: "Alpha"}); err != nil {
		t.Fatalf("same name for another user should be allowed: %v", err)
	}

	list, err := repo.ListByUser(dbc, "user-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 || list[0].DeckName != "Alpha" || list[1].DeckName != "Beta" {
		t.Fatalf("ListByUser: unexpected result: %+v", list)
	}

	got, err := repo.GetByID(dbc, "user-1", beta.ID)
	if err != nil || got == nil || got.DeckName != "Beta" || got.TargetBracket == nil || *got.TargetBracket != 2 {
		t.Fatalf("GetByID: %+v %v", got, err)
	}
	if got, err := repo.GetByID(dbc, "user-2", beta.ID); err != nil || got != nil {
		t.Fatalf("GetByID should be scoped to the owner: %+v %v", got, err)
	}
	if got, err := repo.GetByName(dbc, "user-1", "Alpha"); err != nil || got == nil || got.ID != alpha.ID {
		t.Fatalf("GetByName: %+v %v", got, err)
	}

	n, err := repo.Update(dbc, "user-1", beta.ID, domain.DeckInput{DeckName: "Beta Prime", Summary: pointers.String("tuned")})
	if err != nil || n != 1 {
		t.Fatalf("Update: n=%d err=%v", n, err)
	}
	got, _ = repo.GetByID(dbc, "user-1", beta.ID)
	if got.DeckName != "Beta Prime" || got.TargetBracket != nil || got.Summary == nil || *got.Summary != "tuned" {
		t.Fatalf("Update: unexpected row %+v", got)
	}
	if n, err := repo.Update(dbc, "user-2", beta.ID, domain.DeckInput{DeckName: "x"}); err != nil || n != 0 {
		t.Fatalf("Update of a foreign deck should touch nothing: n=%d err=%v", n, err)
	}

	if n, err := repo.Delete(dbc, "user-1", alpha.ID); err != nil || n != 1 {
		t.Fatalf("Delete: n=%d err=%v", n, err)
	}
	if n, err := repo.Delete(dbc, "user-1", alpha.ID); err != nil || n != 0 {
		t.Fatalf("Delete twice: n=%d err=%v", n, err)
	}
}
