package user

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/edh-dashboard-backend/internal/domain"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/dbctx"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

type UserRepo interface {
	// Upsert inserts the user or refreshes its profile columns. Settings are left untouched.
	Upsert(dbc dbctx.Context, user *domain.User) error
	GetByID(dbc dbctx.Context, userID string) (*domain.User, error)
	UpdateSettings(dbc dbctx.Context, userID string, settings datatypes.JSON) (int64, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Upsert(dbc dbctx.Context, user *domain.User) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	if user == nil || user.ID == "" {
		return nil
	}
	user.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"email",
				"name",
				"avatar_url",
				"updated_at",
			}),
		}).
		Create(user).Error
}

// GetByID returns nil, nil when the user does not exist.
func (ur *userRepo) GetByID(dbc dbctx.Context, userID string) (*domain.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	var row domain.User
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (ur *userRepo) UpdateSettings(dbc dbctx.Context, userID string, settings datatypes.JSON) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"settings":   settings,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}
