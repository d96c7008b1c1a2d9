// Package datamanager hides where a user's decks and games live. Handlers talk to a
// DataManager and never learn whether the rows come from Postgres or a spreadsheet.
package datamanager

import (
	"context"

	"github.com/yungbote/edh-dashboard-backend/internal/domain"
)

// DataManager is the per-user view over decks and games.
//
// Failures that should reach the client with a specific status are *apierr.Error values.
type DataManager interface {
	GetDecks(ctx context.Context) ([]*domain.Deck, error)
	GetGames(ctx context.Context) ([]*domain.Game, error)
	// GetDeckByID returns the deck with its games and stats, or nil when it does not exist.
	GetDeckByID(ctx context.Context, deckID string) (*domain.Deck, error)
	GetDashboardStats(ctx context.Context) (*domain.DashboardStats, error)

	AppendDeck(ctx context.Context, in domain.DeckInput) error
	UpdateDeck(ctx context.Context, in domain.DeckUpdateInput) error
	// DeleteDeck removes the deck and every game recorded for it, returning how many games went.
	DeleteDeck(ctx context.Context, deckID, deckName string) (int, error)

	AppendGame(ctx context.Context, in domain.GameInput) error
	UpdateGame(ctx context.Context, in domain.GameUpdateInput) error
	DeleteGame(ctx context.Context, gameID string) error
}

const (
	msgDeckNotFound    = "Deck not found"
	msgGameNotFound    = "Game not found"
	msgDeckExists      = "A deck with that name already exists"
	msgDeckChanged     = "Deck has changed since it was loaded; reload and try again"
	msgInvalidDeckID   = "Invalid deckId"
	msgInvalidGameID   = "Invalid gameId"
	msgMissingName     = "Missing deckName"
	msgMissingOriginal = "Missing originalName"
)
