package services

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/yungbote/edh-dashboard-backend/internal/data/repos"
	"github.com/yungbote/edh-dashboard-backend/internal/datamanager"
	"github.com/yungbote/edh-dashboard-backend/internal/domain"
	"github.com/yungbote/edh-dashboard-backend/internal/observability"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/apierr"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/dbctx"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

var (
	errNoUser        = errors.New("Not authenticated")
	errNoDatabase    = errors.New("Database not configured")
	errNoSpreadsheet = errors.New("No database spreadsheet selected")
)

// DataService picks the DataManager serving one request.
type DataService interface {
	Manager(ctx context.Context, sessionID string) (datamanager.DataManager, error)
}

type dataService struct {
	log      *logger.Logger
	cfg      DataConfig
	db       *gorm.DB
	repos    datamanager.SQLRepos
	userRepo repos.UserRepo
	auth     AuthService
	users    UserService
	sheets   SheetsService

	fixtures datamanager.DataManager
	upserts  singleflight.Group
	metrics  *observability.Metrics
}

type DataOption func(*dataService)

// WithManagerMetrics instruments every manager handed out.
func WithManagerMetrics(m *observability.Metrics) DataOption {
	return func(ds *dataService) { ds.metrics = m }
}

// NewDataService wires the backends. db and userRepo are nil when Postgres is not
// configured.
func NewDataService(
	log *logger.Logger,
	cfg DataConfig,
	db *gorm.DB,
	sqlRepos datamanager.SQLRepos,
	userRepo repos.UserRepo,
	auth AuthService,
	users UserService,
	sheets SheetsService,
	opts ...DataOption,
) DataService {
	serviceLog := log.With("service", "DataService")
	ds := &dataService{
		log:      serviceLog,
		cfg:      cfg,
		db:       db,
		repos:    sqlRepos,
		userRepo: userRepo,
		auth:     auth,
		users:    users,
		sheets:   sheets,
	}
	for _, opt := range opts {
		opt(ds)
	}
	if cfg.E2E {
		ds.fixtures = datamanager.NewFixtures(serviceLog, nil)
	}
	return ds
}

func (ds *dataService) Manager(ctx context.Context, sessionID string) (datamanager.DataManager, error) {
	var (
		m       datamanager.DataManager
		backend string
		err     error
	)
	switch {
	case ds.cfg.E2E:
		m, backend = ds.fixtures, "fixtures"
	case ds.cfg.backend() == BackendSheets:
		backend = BackendSheets
		m, err = ds.sheetManager(ctx, sessionID)
	default:
		backend = BackendDB
		m, err = ds.sqlManager(ctx, sessionID)
	}
	if err != nil {
		return nil, err
	}
	return datamanager.Instrument(backend, m, ds.metrics), nil
}

func (ds *dataService) sheetManager(ctx context.Context, sessionID string) (datamanager.DataManager, error) {
	ok, err := ds.auth.HasTokens(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierr.New(http.StatusUnauthorized, "unauthenticated", errNoTokens)
	}
	user, err := ds.auth.CurrentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	id, err := ds.users.SpreadsheetID(ctx, sessionID, user)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, apierr.New(http.StatusBadRequest, "no_database", errNoSpreadsheet)
	}
	src, err := ds.sheets.Source(ctx, sessionID, id)
	if err != nil {
		return nil, err
	}
	return datamanager.NewSheets(ds.log, src), nil
}

func (ds *dataService) sqlManager(ctx context.Context, sessionID string) (datamanager.DataManager, error) {
	user, err := ds.auth.CurrentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthenticated", errNoUser)
	}
	if ds.db == nil {
		return nil, apierr.New(http.StatusInternalServerError, "database_not_configured", errNoDatabase)
	}
	if err := ds.ensureUser(ctx, user); err != nil {
		return nil, err
	}
	return datamanager.NewSQL(ds.db, ds.log, user.ID, ds.repos), nil
}

// ensureUser upserts the row decks and games hang off. Concurrent requests for the same
// user share one write.
func (ds *dataService) ensureUser(ctx context.Context, user *domain.AuthUser) error {
	if ds.userRepo == nil {
		return nil
	}
	_, err, _ := ds.upserts.Do(user.ID, func() (any, error) {
		row := &domain.User{ID: user.ID, Email: user.Email, Name: user.Name, AvatarURL: user.Picture}
		return nil, ds.userRepo.Upsert(dbctx.New(ctx), row)
	})
	if err != nil {
		ds.log.Error("User upsert failed", "user_id", user.ID, "error", err)
		return err
	}
	return nil
}
