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

type GameRepo interface {
	Create(dbc dbctx.Context, game *domain.Game) error
	// ListByUser returns every game of the user in insertion order with DeckName resolved.
	ListByUser(dbc dbctx.Context, userID string) ([]*domain.Game, error)
	ListByDeck(dbc dbctx.Context, userID, deckID string) ([]*domain.Game, error)
	GetByID(dbc dbctx.Context, userID, gameID string) (*domain.Game, error)
	CountByDeck(dbc dbctx.Context, userID, deckID string) (int64, error)
	Update(dbc dbctx.Context, userID, gameID string, in domain.GameInput) (int64, error)
	Delete(dbc dbctx.Context, userID, gameID string) (int64, error)
	DeleteByDeck(dbc dbctx.Context, userID, deckID string) (int64, error)
}

type gameRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGameRepo(db *gorm.DB, baseLog *logger.Logger) GameRepo {
	return &gameRepo{
		db:  db,
		log: baseLog.With("repo", "GameRepo"),
	}
}

const gameColumns = "games.id, games.user_id, games.deck_id, games.winner, games.fun, games.p2_fun, games.p3_fun, games.p4_fun, games.notes, games.est_bracket, games.created_at, games.updated_at, decks.name AS deck_name"

func (r *gameRepo) withDeckName(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&domain.Game{}).
		Select(gameColumns).
		Joins("JOIN decks ON decks.id = games.deck_id")
}

func (r *gameRepo) Create(dbc dbctx.Context, game *domain.Game) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Omit(clause.Associations).
		Create(game).Error
}

func (r *gameRepo) ListByUser(dbc dbctx.Context, userID string) ([]*domain.Game, error) {
	out := []*domain.Game{}
	if err := r.withDeckName(dbc).
		Where("games.user_id = ?", userID).
		Order("games.created_at ASC, games.id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *gameRepo) ListByDeck(dbc dbctx.Context, userID, deckID string) ([]*domain.Game, error) {
	out := []*domain.Game{}
	if err := r.withDeckName(dbc).
		Where("games.user_id = ? AND games.deck_id = ?", userID, deckID).
		Order("games.created_at ASC, games.id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *gameRepo) GetByID(dbc dbctx.Context, userID, gameID string) (*domain.Game, error) {
	var game domain.Game
	err := r.withDeckName(dbc).
		Where("games.user_id = ? AND games.id = ?", userID, gameID).
		First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (r *gameRepo) CountByDeck(dbc dbctx.Context, userID, deckID string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&domain.Game{}).
		Where("user_id = ? AND deck_id = ?", userID, deckID).
		Count(&count).Error
	return count, err
}

// Update rewrites the result columns. The deck a game belongs to is fixed at creation.
func (r *gameRepo) Update(dbc dbctx.Context, userID, gameID string, in domain.GameInput) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&domain.Game{}).
		Where("user_id = ? AND id = ?", userID, gameID).
		Updates(map[string]any{
			"winner":      in.Winner,
			"fun":         in.Fun,
			"p2_fun":      in.P2Fun,
			"p3_fun":      in.P3Fun,
			"p4_fun":      in.P4Fun,
			"notes":       in.Notes,
			"est_bracket": in.EstBracket,
			"updated_at":  time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *gameRepo) Delete(dbc dbctx.Context, userID, gameID string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND id = ?", userID, gameID).
		Delete(&domain.Game{})
	return res.RowsAffected, res.Error
}

func (r *gameRepo) DeleteByDeck(dbc dbctx.Context, userID, deckID string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND deck_id = ?", userID, deckID).
		Delete(&domain.Game{})
	return res.RowsAffected, res.Error
}
