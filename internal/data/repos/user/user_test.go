package user

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/edh-dashboard-backend/internal/data/repos/testutil"
	"github.com/yungbote/edh-dashboard-backend/internal/domain"
	"github.com/yungbote/edh-dashboard-backend/internal/pkg/pointers"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.SQLite(t)
	ctx := context.Background()
	dbc := dbctx.New(ctx)

	repo := NewUserRepo(db, testutil.Logger(t))

	if got, err := repo.GetByID(dbc, "google-123"); err != nil || got != nil {
		t.Fatalf("GetByID (missing): %+v %v", got, err)
	}

	u := &domain.User{ID: "google-123", Email: pointers.String("a@example.com"), Name: pointers.String("A")}
	if err := repo.Upsert(dbc, u); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if n, err := repo.UpdateSettings(dbc, u.ID, datatypes.JSON(`{"spreadsheetId":"sheet-1"}`)); err != nil || n != 1 {
		t.Fatalf("UpdateSettings: n=%d err=%v", n, err)
	}

	if err := repo.Upsert(dbc, &domain.User{ID: "google-123", Email: pointers.String("b@example.com"), Name: pointers.String("B")}); err != nil {
		t.Fatalf("Upsert (update): %v", err)
	}
	got, err := repo.GetByID(dbc, "google-123")
	if err != nil || got == nil {
		t.Fatalf("GetByID: %+v %v", got, err)
	}
	if got.Email == nil || *got.Email != "b@example.com" || *got.Name != "B" {
		t.Fatalf("Upsert should refresh profile columns: %+v", got)
	}
	if string(got.Settings) != `{"spreadsheetId":"sheet-1"}` {
		t.Fatalf("Upsert must keep settings, got %s", got.Settings)
	}

	if n, err := repo.UpdateSettings(dbc, "missing", datatypes.JSON(`{}`)); err != nil || n != 0 {
		t.Fatalf("UpdateSettings (missing): n=%d err=%v", n, err)
	}
}
