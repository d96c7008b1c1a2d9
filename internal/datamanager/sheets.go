package datamanager

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/edh-dashboard-backend/internal/domain"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/apierr"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
	"github.com/yungbote/edh-dashboard-backend/internal/stats"
	"github.com/yungbote/edh-dashboard-backend/internal/tabular"
)

type sheetManager struct {
	log *logger.Logger
	src tabular.Source
}

// NewSheets returns a manager over a spreadsheet laid out as a Decks and a Games sheet.
func NewSheets(log *logger.Logger, src tabular.Source) DataManager {
	return &sheetManager{
		log: log.With("manager", "sheets"),
		src: src,
	}
}

func (m *sheetManager) readDecks(ctx context.Context) (tabular.Matrix, error) {
	data, err := m.src.Read(ctx, tabular.DecksRange)
	if err != nil {
		return nil, fmt.Errorf("read decks: %w", err)
	}
	return data, nil
}

func (m *sheetManager) readGames(ctx context.Context) (tabular.Matrix, error) {
	data, err := m.src.Read(ctx, tabular.GamesRange)
	if err != nil {
		return nil, fmt.Errorf("read games: %w", err)
	}
	return data, nil
}

// readBoth fetches both sheets concurrently.
func (m *sheetManager) readBoth(ctx context.Context) (decks, games tabular.Matrix, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		decks, err = m.readDecks(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		games, err = m.readGames(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return decks, games, nil
}

func (m *sheetManager) GetDecks(ctx context.Context) ([]*domain.Deck, error) {
	data, err := m.readDecks(ctx)
	if err != nil {
		return nil, err
	}
	return tabular.DecksFromMatrix(data), nil
}

func (m *sheetManager) GetGames(ctx context.Context) ([]*domain.Game, error) {
	data, err := m.readGames(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []*domain.Game{}, nil
	}
	return tabular.GamesFromRows(data[0], tabular.FilterRowsWithNumbers(data, nil)), nil
}

func (m *sheetManager) GetDeckByID(ctx context.Context, deckID string) (*domain.Deck, error) {
	n, err := tabular.ParseDeckID(deckID)
	if err != nil {
		return nil, nil
	}
	decks, games, err := m.readBoth(ctx)
	if err != nil {
		return nil, err
	}
	deck := deckAt(decks, n)
	if deck == nil {
		return nil, nil
	}
	return stats.WithStatsFromGames(tabular.WithGames(deck, games)), nil
}

func (m *sheetManager) GetDashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	decks, games, err := m.readBoth(ctx)
	if err != nil {
		return nil, err
	}
	return stats.Dashboard(tabular.GamesFromMatrix(games), tabular.DecksFromMatrix(decks)), nil
}

// deckAt returns the deck stored n rows below the header, or nil for a missing or blank row.
func deckAt(decks tabular.Matrix, n int) *domain.Deck {
	if len(decks) == 0 || n < 1 || n >= len(decks) {
		return nil
	}
	deck := tabular.DeckFromMatrix(tabular.Matrix{decks[0], decks[n]})
	if strings.TrimSpace(deck.DeckName) == "" {
		return nil
	}
	deck.ID = tabular.DeckID(n)
	return deck
}

func findDeckByName(decks tabular.Matrix, name string) *domain.Deck {
	for _, d := range tabular.DecksFromMatrix(decks) {
		if d.DeckName == name {
			return d
		}
	}
	return nil
}

func (m *sheetManager) AppendDeck(ctx context.Context, in domain.DeckInput) error {
	in.DeckName = strings.TrimSpace(in.DeckName)
	if in.DeckName == "" {
		return apierr.BadRequest(msgMissingName)
	}
	decks, err := m.readDecks(ctx)
	if err != nil {
		return err
	}
	if findDeckByName(decks, in.DeckName) != nil {
		return apierr.Conflict(msgDeckExists)
	}
	if err := m.src.Append(ctx, tabular.DecksSheet, tabular.DeckRow(in)); err != nil {
		return fmt.Errorf("append deck: %w", err)
	}
	return nil
}

// UpdateDeck rewrites the deck row and, on rename, the deck cell of every game row that
// pointed at the old name.
func (m *sheetManager) UpdateDeck(ctx context.Context, in domain.DeckUpdateInput) error {
	in.DeckName = strings.TrimSpace(in.DeckName)
	if in.DeckName == "" {
		return apierr.BadRequest(msgMissingName)
	}
	if in.OriginalName == "" {
		return apierr.BadRequest(msgMissingOriginal)
	}
	n, err := tabular.ParseDeckID(in.DeckID)
	if err != nil {
		return apierr.BadRequest(msgInvalidDeckID)
	}
	decks, games, err := m.readBoth(ctx)
	if err != nil {
		return err
	}
	current := deckAt(decks, n)
	if current == nil {
		return apierr.NotFound(msgDeckNotFound)
	}
	if current.DeckName != in.OriginalName {
		return apierr.Conflict(msgDeckChanged)
	}
	renamed := in.DeckName != in.OriginalName
	if renamed {
		if other := findDeckByName(decks, in.DeckName); other != nil && other.ID != current.ID {
			return apierr.Conflict(msgDeckExists)
		}
	}

	if err := m.src.UpdateRow(ctx, tabular.DecksSheet, n+1, tabular.DeckRow(in.DeckInput)); err != nil {
		return fmt.Errorf("update deck: %w", err)
	}
	if !renamed || len(games) == 0 {
		return nil
	}

	col := tabular.ColumnIndex(games[0], "deck")
	if col == -1 {
		return nil
	}
	rows := tabular.FilterRowsWithNumbers(games, []tabular.Filter{{Column: "deck", Match: in.OriginalName}})
	for _, r := range rows {
		row := make([]any, len(r.Row))
		copy(row, r.Row)
		row[col] = in.DeckName
		if err := m.src.UpdateRow(ctx, tabular.GamesSheet, r.RowNumber, row); err != nil {
			return fmt.Errorf("rename deck in game %s: %w", tabular.GameID(r.RowNumber), err)
		}
	}
	m.log.Debug("Renamed deck in games", "games", len(rows))
	return nil
}

func (m *sheetManager) DeleteDeck(ctx context.Context, deckID, deckName string) (int, error) {
	if strings.TrimSpace(deckName) == "" {
		return 0, apierr.BadRequest(msgMissingName)
	}
	n, err := tabular.ParseDeckID(deckID)
	if err != nil {
		return 0, apierr.BadRequest(msgInvalidDeckID)
	}
	decks, games, err := m.readBoth(ctx)
	if err != nil {
		return 0, err
	}
	current := deckAt(decks, n)
	if current == nil {
		return 0, apierr.NotFound(msgDeckNotFound)
	}
	if current.DeckName != deckName {
		return 0, apierr.Conflict(msgDeckChanged)
	}

	rows := tabular.FilterRowsWithNumbers(games, []tabular.Filter{{Column: "deck", Match: deckName}})
	if len(rows) > 0 {
		numbers := make([]int, 0, len(rows))
		for _, r := range rows {
			numbers = append(numbers, r.RowNumber)
		}
		if err := m.src.DeleteRows(ctx, tabular.GamesSheet, numbers); err != nil {
			return 0, fmt.Errorf("delete deck games: %w", err)
		}
	}
	if err := m.src.DeleteRows(ctx, tabular.DecksSheet, []int{n + 1}); err != nil {
		return 0, fmt.Errorf("delete deck: %w", err)
	}
	return len(rows), nil
}

func (m *sheetManager) AppendGame(ctx context.Context, in domain.GameInput) error {
	in.DeckName = strings.TrimSpace(in.DeckName)
	if in.DeckName == "" {
		return apierr.BadRequest(msgMissingName)
	}
	decks, err := m.readDecks(ctx)
	if err != nil {
		return err
	}
	if findDeckByName(decks, in.DeckName) == nil {
		return apierr.NotFound(msgDeckNotFound)
	}
	if err := m.src.Append(ctx, tabular.GamesSheet, tabular.GameRow(in)); err != nil {
		return fmt.Errorf("append game: %w", err)
	}
	return nil
}

// UpdateGame rewrites a game row. A blank DeckName keeps the game on its current deck.
func (m *sheetManager) UpdateGame(ctx context.Context, in domain.GameUpdateInput) error {
	rowNumber, err := tabular.ParseGameID(in.GameID)
	if err != nil {
		return apierr.BadRequest(msgInvalidGameID)
	}
	decks, games, err := m.readBoth(ctx)
	if err != nil {
		return err
	}
	current := gameAt(games, rowNumber)
	if current == nil {
		return apierr.NotFound(msgGameNotFound)
	}
	in.DeckName = strings.TrimSpace(in.DeckName)
	if in.DeckName == "" {
		in.DeckName = current.DeckName
	} else if findDeckByName(decks, in.DeckName) == nil {
		return apierr.NotFound(msgDeckNotFound)
	}
	if err := m.src.UpdateRow(ctx, tabular.GamesSheet, rowNumber, tabular.GameRow(in.GameInput)); err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	return nil
}

func (m *sheetManager) DeleteGame(ctx context.Context, gameID string) error {
	rowNumber, err := tabular.ParseGameID(gameID)
	if err != nil {
		return apierr.BadRequest(msgInvalidGameID)
	}
	games, err := m.readGames(ctx)
	if err != nil {
		return err
	}
	if gameAt(games, rowNumber) == nil {
		return apierr.NotFound(msgGameNotFound)
	}
	if err := m.src.DeleteRows(ctx, tabular.GamesSheet, []int{rowNumber}); err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return nil
}

// gameAt returns the game stored on a sheet row, or nil for a missing or blank row.
func gameAt(games tabular.Matrix, rowNumber int) *domain.Game {
	if len(games) == 0 || rowNumber < 2 || rowNumber > len(games) {
		return nil
	}
	out := tabular.GamesFromRows(games[0], []tabular.RowWithNumber{{RowNumber: rowNumber, Row: games[rowNumber-1]}})
	if len(out) == 0 {
		return nil
	}
	return out[0]
}
