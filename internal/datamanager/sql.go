package datamanager

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/edh-dashboard-backend/internal/data/repos"
	"github.com/yungbote/edh-dashboard-backend/internal/domain"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/apierr"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/dbctx"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
	"github.com/yungbote/edh-dashboard-backend/internal/stats"
)

// SQLRepos groups the repositories the SQL manager reads and writes through.
type SQLRepos struct {
	Decks repos.DeckRepo
	Games repos.GameRepo
	Stats repos.StatsRepo
}

type sqlManager struct {
	db     *gorm.DB
	log    *logger.Logger
	userID string
	repos  SQLRepos
}

// NewSQL returns a manager scoped to userID's rows.
func NewSQL(db *gorm.DB, log *logger.Logger, userID string, r SQLRepos) DataManager {
	return &sqlManager{
		db:     db,
		log:    log.With("manager", "sql"),
		userID: userID,
		repos:  r,
	}
}

func (m *sqlManager) GetDecks(ctx context.Context) ([]*domain.Deck, error) {
	out, err := m.repos.Decks.ListByUser(dbctx.New(ctx), m.userID)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	return out, nil
}

func (m *sqlManager) GetGames(ctx context.Context) ([]*domain.Game, error) {
	out, err := m.repos.Games.ListByUser(dbctx.New(ctx), m.userID)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return out, nil
}

func (m *sqlManager) GetDeckByID(ctx context.Context, deckID string) (*domain.Deck, error) {
	dbc := dbctx.New(ctx)
	deck, err := m.repos.Decks.GetByID(dbc, m.userID, deckID)
	if err != nil {
		return nil, fmt.Errorf("get deck: %w", err)
	}
	if deck == nil {
		return nil, nil
	}
	games, err := m.repos.Games.ListByDeck(dbc, m.userID, deck.ID)
	if err != nil {
		return nil, fmt.Errorf("list deck games: %w", err)
	}
	for _, g := range games {
		g.DeckName = deck.DeckName
		g.Deck = deck
	}
	out := deck.Clone()
	out.Games = games

	if !m.repos.Stats.Supported() {
		return stats.WithStatsFromGames(out), nil
	}
	summary, err := m.repos.Stats.Summary(dbc, m.userID, deck.ID)
	if err != nil {
		return nil, fmt.Errorf("deck stats: %w", err)
	}
	out.Stats = summary
	return out, nil
}

func (m *sqlManager) GetDashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	dbc := dbctx.New(ctx)
	if !m.repos.Stats.Supported() {
		decks, err := m.GetDecks(ctx)
		if err != nil {
			return nil, err
		}
		games, err := m.GetGames(ctx)
		if err != nil {
			return nil, err
		}
		return stats.Dashboard(games, decks), nil
	}

	summary, err := m.repos.Stats.Summary(dbc, m.userID, "")
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	if summary == nil {
		return &domain.DashboardStats{Stats: nil, DeckStats: []*domain.DeckStatsRow{}}, nil
	}
	rows, err := m.repos.Stats.DeckRows(dbc, m.userID)
	if err != nil {
		return nil, fmt.Errorf("dashboard deck rows: %w", err)
	}
	stats.ApplyUsage(rows)
	return &domain.DashboardStats{Stats: summary, DeckStats: rows}, nil
}

func (m *sqlManager) AppendDeck(ctx context.Context, in domain.DeckInput) error {
	name := strings.TrimSpace(in.DeckName)
	if name == "" {
		return apierr.BadRequest(msgMissingName)
	}
	deck := &domain.Deck{
		UserID:        m.userID,
		DeckName:      name,
		TargetBracket: in.TargetBracket,
		Summary:       in.Summary,
		ArchidektLink: in.ArchidektLink,
	}
	if err := m.repos.Decks.Create(dbctx.New(ctx), deck); err != nil {
		if repos.IsUniqueViolation(err) {
			return apierr.Conflict(msgDeckExists)
		}
		return fmt.Errorf("create deck: %w", err)
	}
	return nil
}

func (m *sqlManager) UpdateDeck(ctx context.Context, in domain.DeckUpdateInput) error {
	in.DeckName = strings.TrimSpace(in.DeckName)
	if in.DeckName == "" {
		return apierr.BadRequest(msgMissingName)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		current, err := m.repos.Decks.GetByID(dbc, m.userID, in.DeckID)
		if err != nil {
			return fmt.Errorf("get deck: %w", err)
		}
		if current == nil {
			return apierr.NotFound(msgDeckNotFound)
		}
		if in.OriginalName != "" && current.DeckName != in.OriginalName {
			return apierr.Conflict(msgDeckChanged)
		}
		n, err := m.repos.Decks.Update(dbc, m.userID, in.DeckID, in.DeckInput)
		if err != nil {
			if repos.IsUniqueViolation(err) {
				return apierr.Conflict(msgDeckExists)
			}
			return fmt.Errorf("update deck: %w", err)
		}
		if n == 0 {
			return apierr.NotFound(msgDeckNotFound)
		}
		return nil
	})
}

func (m *sqlManager) DeleteDeck(ctx context.Context, deckID, deckName string) (int, error) {
	var deleted int64
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		current, err := m.repos.Decks.GetByID(dbc, m.userID, deckID)
		if err != nil {
			return fmt.Errorf("get deck: %w", err)
		}
		if current == nil {
			return apierr.NotFound(msgDeckNotFound)
		}
		if deckName != "" && current.DeckName != deckName {
			return apierr.Conflict(msgDeckChanged)
		}
		if deleted, err = m.repos.Games.CountByDeck(dbc, m.userID, deckID); err != nil {
			return fmt.Errorf("count deck games: %w", err)
		}
		if _, err := m.repos.Games.DeleteByDeck(dbc, m.userID, deckID); err != nil {
			return fmt.Errorf("delete deck games: %w", err)
		}
		n, err := m.repos.Decks.Delete(dbc, m.userID, deckID)
		if err != nil {
			return fmt.Errorf("delete deck: %w", err)
		}
		if n == 0 {
			return apierr.NotFound(msgDeckNotFound)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(deleted), nil
}

func (m *sqlManager) AppendGame(ctx context.Context, in domain.GameInput) error {
	name := strings.TrimSpace(in.DeckName)
	if name == "" {
		return apierr.BadRequest(msgMissingName)
	}
	dbc := dbctx.New(ctx)
	deck, err := m.repos.Decks.GetByName(dbc, m.userID, name)
	if err != nil {
		return fmt.Errorf("get deck: %w", err)
	}
	if deck == nil {
		return apierr.NotFound(msgDeckNotFound)
	}
	game := &domain.Game{
		UserID:     m.userID,
		DeckID:     deck.ID,
		Winner:     in.Winner,
		Fun:        in.Fun,
		P2Fun:      in.P2Fun,
		P3Fun:      in.P3Fun,
		P4Fun:      in.P4Fun,
		Notes:      in.Notes,
		EstBracket: in.EstBracket,
	}
	if err := m.repos.Games.Create(dbc, game); err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	return nil
}

// UpdateGame rewrites the result fields. A game stays with the deck it was recorded for.
func (m *sqlManager) UpdateGame(ctx context.Context, in domain.GameUpdateInput) error {
	if strings.TrimSpace(in.GameID) == "" {
		return apierr.BadRequest(msgInvalidGameID)
	}
	n, err := m.repos.Games.Update(dbctx.New(ctx), m.userID, in.GameID, in.GameInput)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	if n == 0 {
		return apierr.NotFound(msgGameNotFound)
	}
	return nil
}

func (m *sqlManager) DeleteGame(ctx context.Context, gameID string) error {
	if strings.TrimSpace(gameID) == "" {
		return apierr.BadRequest(msgInvalidGameID)
	}
	n, err := m.repos.Games.Delete(dbctx.New(ctx), m.userID, gameID)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	if n == 0 {
		return apierr.NotFound(msgGameNotFound)
	}
	return nil
}
