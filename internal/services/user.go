package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"

	"github.com/yungbote/edh-dashboard-backend/internal/data/repos"
	"github.com/yungbote/edh-dashboard-backend/internal/domain"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/apierr"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/dbctx"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

const (
	BackendDB     = "db"
	BackendSheets = "sheets"
)

// DataConfig selects where deck and game data lives.
type DataConfig struct {
	Backend string
	E2E     bool
	// DBConfigured is false when no Postgres connection was set up.
	DBConfigured bool
}

func (c DataConfig) backend() string {
	if c.Backend == BackendSheets {
		return BackendSheets
	}
	return BackendDB
}

// Me is the identity summary the frontend shell renders from.
type Me struct {
	IsAuthenticated bool             `json:"isAuthenticated"`
	HasDatabase     bool             `json:"hasDatabase"`
	Backend         string           `json:"backend"`
	User            *domain.AuthUser `json:"user"`
}

type Settings struct {
	Backend       string           `json:"backend"`
	User          *domain.AuthUser `json:"user"`
	SpreadsheetID *string          `json:"spreadsheetId"`
}

type UserService interface {
	Me(ctx context.Context, sessionID string) (*Me, error)
	Settings(ctx context.Context, sessionID string) (*Settings, error)
	// SpreadsheetID returns the linked spreadsheet, preferring the session over the
	// user's saved settings. It is empty when nothing is linked.
	SpreadsheetID(ctx context.Context, sessionID string, user *domain.AuthUser) (string, error)
	LinkSpreadsheet(ctx context.Context, sessionID, spreadsheetID string) error
}

type userService struct {
	log      *logger.Logger
	cfg      DataConfig
	auth     AuthService
	sessions SessionService
	userRepo repos.UserRepo
}

// NewUserService builds the user facade. userRepo may be nil when no database is configured.
func NewUserService(log *logger.Logger, cfg DataConfig, auth AuthService, sessions SessionService, userRepo repos.UserRepo) UserService {
	return &userService{
		log:      log.With("service", "UserService"),
		cfg:      cfg,
		auth:     auth,
		sessions: sessions,
		userRepo: userRepo,
	}
}

func (us *userService) Me(ctx context.Context, sessionID string) (*Me, error) {
	user, err := us.auth.CurrentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := &Me{
		IsAuthenticated: user != nil,
		Backend:         us.cfg.backend(),
		User:            user,
	}
	switch {
	case us.cfg.E2E:
		out.HasDatabase = true
	case out.Backend == BackendSheets:
		id, err := us.SpreadsheetID(ctx, sessionID, user)
		if err != nil {
			return nil, err
		}
		out.HasDatabase = id != ""
	default:
		out.HasDatabase = us.cfg.DBConfigured
	}
	return out, nil
}

func (us *userService) Settings(ctx context.Context, sessionID string) (*Settings, error) {
	user, err := us.auth.CurrentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := &Settings{Backend: us.cfg.backend(), User: user}
	id, err := us.SpreadsheetID(ctx, sessionID, user)
	if err != nil {
		return nil, err
	}
	if id != "" {
		out.SpreadsheetID = &id
	}
	return out, nil
}

func (us *userService) SpreadsheetID(ctx context.Context, sessionID string, user *domain.AuthUser) (string, error) {
	var id string
	ok, err := us.sessions.Get(ctx, sessionID, SessionKeyDatabaseSheet, &id)
	if err != nil {
		return "", err
	}
	if ok && id != "" {
		return id, nil
	}
	if us.userRepo == nil || user == nil {
		return "", nil
	}
	settings, err := us.savedSettings(ctx, user.ID)
	if err != nil {
		return "", err
	}
	return settings.SpreadsheetID, nil
}

func (us *userService) LinkSpreadsheet(ctx context.Context, sessionID, spreadsheetID string) error {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return apierr.BadRequest("Missing spreadsheetId")
	}
	if err := us.sessions.Set(ctx, sessionID, SessionKeyDatabaseSheet, spreadsheetID); err != nil {
		return err
	}
	if us.userRepo == nil {
		return nil
	}
	user, err := us.auth.CurrentUser(ctx, sessionID)
	if err != nil || user == nil {
		return err
	}

	settings, err := us.savedSettings(ctx, user.ID)
	if err != nil {
		return err
	}
	settings.SpreadsheetID = spreadsheetID
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	n, err := us.userRepo.UpdateSettings(dbctx.New(ctx), user.ID, datatypes.JSON(raw))
	if err != nil {
		return err
	}
	if n == 0 {
		us.log.Debug("Spreadsheet linked for session only; user row missing", "user_id", user.ID)
	}
	return nil
}

func (us *userService) savedSettings(ctx context.Context, userID string) (domain.UserSettings, error) {
	var settings domain.UserSettings
	row, err := us.userRepo.GetByID(dbctx.New(ctx), userID)
	if err != nil {
		return settings, err
	}
	if row == nil || len(row.Settings) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(row.Settings, &settings); err != nil {
		us.log.Warn("Ignoring unreadable user settings", "user_id", userID, "error", err)
		return domain.UserSettings{}, nil
	}
	return settings, nil
}
