package services

import (
	"context"
	"net/http"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/edh-dashboard-backend/internal/data/repos"
	"github.com/yungbote/edh-dashboard-backend/internal/data/repos/testutil"
	"github.com/yungbote/edh-dashboard-backend/internal/datamanager"
	"github.com/yungbote/edh-dashboard-backend/internal/domain"
	"github.com/yungbote/edh-dashboard-backend/internal/pkg/pointers"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/apierr"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/dbctx"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/kv"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

type dataFixture struct {
	sessions SessionService
	auth     AuthService
	users    UserService
	data     DataService
	userRepo repos.UserRepo
}

func newDataFixture(t *testing.T, cfg DataConfig, db *gorm.DB) *dataFixture {
	t.Helper()
	log := logger.Nop()
	f := &dataFixture{sessions: NewSessionService(log, kv.NewMemory())}
	var sqlRepos datamanager.SQLRepos
	if db != nil {
		cfg.DBConfigured = true
		f.userRepo = repos.NewUserRepo(db, log)
		sqlRepos = datamanager.SQLRepos{
			Decks: repos.NewDeckRepo(db, log),
			Games: repos.NewGameRepo(db, log),
			Stats: repos.NewStatsRepo(db, log),
		}
	}
	f.auth = NewAuthService(log, AuthConfig{E2E: cfg.E2E}, f.sessions, f.userRepo)
	f.users = NewUserService(log, cfg, f.auth, f.sessions, f.userRepo)
	sheets := NewSheetsService(log, f.auth, nil)
	f.data = NewDataService(log, cfg, db, sqlRepos, f.userRepo, f.auth, f.users, sheets)
	return f
}

func (f *dataFixture) login(t *testing.T, sessionID, userID string) {
	t.Helper()
	profile := domain.GoogleProfile{ID: userID, Email: pointers.String(userID + "@example.com"), Name: pointers.String("Player")}
	if err := f.sessions.Set(context.Background(), sessionID, SessionKeyUserProfile, profile); err != nil {
		t.Fatalf("Set profile: %v", err)
	}
}

func TestDataServiceE2EFixturesAreShared(t *testing.T) {
	f := newDataFixture(t, DataConfig{E2E: true}, nil)
	ctx := context.Background()

	first, err := f.data.Manager(ctx, "a")
	if err != nil {
		t.Fatalf("Manager: %v", err)
	}
	if err := first.AppendDeck(ctx, domain.DeckInput{DeckName: "Deck Gamma"}); err != nil {
		t.Fatalf("AppendDeck: %v", err)
	}
	second, err := f.data.Manager(ctx, "b")
	if err != nil {
		t.Fatalf("Manager: %v", err)
	}
	decks, err := second.GetDecks(ctx)
	if err != nil {
		t.Fatalf("GetDecks: %v", err)
	}
	if len(decks) != 3 || decks[2].DeckName != "Deck Gamma" {
		t.Fatalf("fixture writes should be visible process-wide, got %+v", decks)
	}

	me, err := f.users.Me(ctx, "a")
	if err != nil || me.IsAuthenticated || !me.HasDatabase {
		t.Fatalf("e2e me: %+v %v", me, err)
	}
}

func TestDataServiceSQLRequiresUserAndDatabase(t *testing.T) {
	ctx := context.Background()

	noDB := newDataFixture(t, DataConfig{}, nil)
	if _, err := noDB.data.Manager(ctx, "sid"); apierr.StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("anonymous request should be 401, got %v", err)
	}
	noDB.login(t, "sid", "g-1")
	if _, err := noDB.data.Manager(ctx, "sid"); apierr.StatusOf(err) != http.StatusInternalServerError {
		t.Fatalf("missing database should be 500, got %v", err)
	}

	db := testutil.SQLite(t)
	f := newDataFixture(t, DataConfig{}, db)
	f.login(t, "sid", "g-1")
	m, err := f.data.Manager(ctx, "sid")
	if err != nil {
		t.Fatalf("Manager: %v", err)
	}
	if err := m.AppendDeck(ctx, domain.DeckInput{DeckName: "Owned"}); err != nil {
		t.Fatalf("AppendDeck: %v", err)
	}
	row, err := f.userRepo.GetByID(dbctx.New(ctx), "g-1")
	if err != nil || row == nil || row.Email == nil || *row.Email != "g-1@example.com" {
		t.Fatalf("user row should be upserted: %+v %v", row, err)
	}

	me, err := f.users.Me(ctx, "sid")
	if err != nil || !me.IsAuthenticated || !me.HasDatabase || me.Backend != BackendDB || me.User.ID != "g-1" {
		t.Fatalf("me: %+v %v", me, err)
	}
}

func TestDataServiceSheetsBackend(t *testing.T) {
	f := newDataFixture(t, DataConfig{Backend: BackendSheets}, nil)
	ctx := context.Background()

	if _, err := f.data.Manager(ctx, "sid"); apierr.StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("no tokens should be 401, got %v", err)
	}
	signIn(t, f.sessions, "sid")
	f.login(t, "sid", "g-1")
	if _, err := f.data.Manager(ctx, "sid"); apierr.StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("no spreadsheet should be 400, got %v", err)
	}
	if err := f.users.LinkSpreadsheet(ctx, "sid", "sheet-1"); err != nil {
		t.Fatalf("LinkSpreadsheet: %v", err)
	}
	if _, err := f.data.Manager(ctx, "sid"); err != nil {
		t.Fatalf("Manager: %v", err)
	}
	me, err := f.users.Me(ctx, "sid")
	if err != nil || !me.HasDatabase || me.Backend != BackendSheets {
		t.Fatalf("me: %+v %v", me, err)
	}
}

func TestUserServiceLinkSpreadsheet(t *testing.T) {
	db := testutil.SQLite(t)
	f := newDataFixture(t, DataConfig{Backend: BackendSheets}, db)
	ctx := context.Background()

	if err := f.users.LinkSpreadsheet(ctx, "sid", "  "); apierr.StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("blank id should be 400, got %v", err)
	}

	testutil.SeedUser(t, ctx, db, "g-7")
	f.login(t, "sid", "g-7")
	if err := f.users.LinkSpreadsheet(ctx, "sid", "sheet-42"); err != nil {
		t.Fatalf("LinkSpreadsheet: %v", err)
	}

	// A fresh session for the same user falls back to the saved settings.
	f.login(t, "other", "g-7")
	settings, err := f.users.Settings(ctx, "other")
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if settings.SpreadsheetID == nil || *settings.SpreadsheetID != "sheet-42" || settings.Backend != BackendSheets {
		t.Fatalf("unexpected settings %+v", settings)
	}

	anon, err := f.users.Settings(ctx, "anon")
	if err != nil || anon.SpreadsheetID != nil || anon.User != nil {
		t.Fatalf("anonymous settings: %+v %v", anon, err)
	}
}
