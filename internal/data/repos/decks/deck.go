package decks

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/edh-dashboard-backend/internal/domain"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/dbctx"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

type DeckRepo interface {
	Create(dbc dbctx.Context, deck *domain.Deck) error
	ListByUser(dbc dbctx.Context, userID string) ([]*domain.Deck, error)
	GetByID(dbc dbctx.Context, userID, deckID string) (*domain.Deck, error)
	GetByName(dbc dbctx.Context, userID, name string) (*domain.Deck, error)
	Update(dbc dbctx.Context, userID, deckID string, in domain.DeckInput) (int64, error)
	Delete(dbc dbctx.Context, userID, deckID string) (int64, error)
}

type deckRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDeckRepo(db *gorm.DB, baseLog *logger.Logger) DeckRepo {
	return &deckRepo{
		db:  db,
		log: baseLog.With("repo", "DeckRepo"),
	}
}

func (r *deckRepo) Create(dbc dbctx.Context, deck *domain.Deck) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Omit(clause.Associations).
		Create(deck).Error
}

func (r *deckRepo) ListByUser(dbc dbctx.Context, userID string) ([]*domain.Deck, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*domain.Deck{}
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns nil, nil when the deck does not exist for the user.
func (r *deckRepo) GetByID(dbc dbctx.Context, userID, deckID string) (*domain.Deck, error) {
	return r.first(dbc, "user_id = ? AND id = ?", userID, deckID)
}

func (r *deckRepo) GetByName(dbc dbctx.Context, userID, name string) (*domain.Deck, error) {
	return r.first(dbc, "user_id = ? AND name = ?", userID, name)
}

func (r *deckRepo) first(dbc dbctx.Context, query string, args ...any) (*domain.Deck, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var deck domain.Deck
	err := transaction.WithContext(dbc.Ctx).
		Where(query, args...).
		First(&deck).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &deck, nil
}

func (r *deckRepo) Update(dbc dbctx.Context, userID, deckID string, in domain.DeckInput) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&domain.Deck{}).
		Where("user_id = ? AND id = ?", userID, deckID).
		Updates(map[string]any{
			"name":           in.DeckName,
			"target_bracket": in.TargetBracket,
			"summary":        in.Summary,
			"archidekt_link": in.ArchidektLink,
			"updated_at":     time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *deckRepo) Delete(dbc dbctx.Context, userID, deckID string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND id = ?", userID, deckID).
		Delete(&domain.Deck{})
	return res.RowsAffected, res.Error
}
