package tabular

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yungbote/edh-dashboard-backend/internal/domain"
)

const (
	DecksSheet = "Decks"
	GamesSheet = "Games"

	DecksRange = "Decks!A1:D"
	GamesRange = "Games!A1:H"

	deckIDPrefix = "deck-"
	gameIDPrefix = "row-"
)

var (
	DeckHeader = []any{"Name", "Target Bracket", "Summary", "Archidekt Link"}
	GameHeader = []any{"Deck", "Winner", "Fun", "P2 Fun", "P3 Fun", "P4 Fun", "Notes", "Est. Pod Bracket"}
)

// FilterRowsWithNumbers returns the data rows (header excluded) that satisfy every filter,
// tagged with their 1-based sheet row number. A filter naming an unknown column is ignored.
func FilterRowsWithNumbers(m Matrix, filters []Filter) []RowWithNumber {
	if len(m) < 2 {
		return []RowWithNumber{}
	}
	headers := Headers(m[0])
	out := make([]RowWithNumber, 0, len(m)-1)
	for i, row := range m[1:] {
		if row == nil {
			continue
		}
		if matchesAll(headers, row, filters) {
			out = append(out, RowWithNumber{RowNumber: i + 2, Row: row})
		}
	}
	return out
}

func matchesAll(headers []string, row []any, filters []Filter) bool {
	for _, f := range filters {
		idx := indexOf(headers, f.Column)
		if idx == -1 {
			continue
		}
		if !looseEqual(cellAt(row, idx), f.Match) {
			return false
		}
	}
	return true
}

// FilterData applies filters to every row, the header included. When none of the filter
// columns exist the matrix is returned as is.
func FilterData(m Matrix, filters []Filter) Matrix {
	if len(m) == 0 {
		return m
	}
	headers := Headers(m[0])
	known := false
	for _, f := range filters {
		if indexOf(headers, f.Column) != -1 {
			known = true
			break
		}
	}
	if !known {
		return m
	}
	out := Matrix{}
	for _, row := range m {
		if matchesAll(headers, row, filters) {
			out = append(out, row)
		}
	}
	return out
}

type deckColumns struct {
	name, target, summary, link int
}

func deckColumnsOf(header []any) deckColumns {
	h := Headers(header)
	return deckColumns{
		name:    indexOf(h, "name"),
		target:  indexOf(h, "target bracket"),
		summary: indexOf(h, "summary"),
		link:    indexOf(h, "archidekt link"),
	}
}

func (c deckColumns) deck(row []any) *domain.Deck {
	d := &domain.Deck{}
	if c.name != -1 {
		d.DeckName = CellString(cellAt(row, c.name))
	}
	if c.target != -1 {
		d.TargetBracket = ToNumberOrNull(cellAt(row, c.target))
	}
	if c.summary != -1 {
		d.Summary = stringOrNull(cellAt(row, c.summary))
	}
	if c.link != -1 {
		d.ArchidektLink = stringOrNull(cellAt(row, c.link))
	}
	return d
}

// DeckFromMatrix maps the first data row into a deck. Fewer than two rows yields an empty deck.
func DeckFromMatrix(m Matrix) *domain.Deck {
	if len(m) < 2 {
		return &domain.Deck{}
	}
	return deckColumnsOf(m[0]).deck(m[1])
}

// DecksFromMatrix maps every non-empty data row into a deck with id "deck-<n>", n being the
// row's 1-based position below the header.
func DecksFromMatrix(m Matrix) []*domain.Deck {
	out := []*domain.Deck{}
	if len(m) < 2 {
		return out
	}
	cols := deckColumnsOf(m[0])
	for i, row := range m[1:] {
		if isEmptyRow(row) {
			continue
		}
		d := cols.deck(row)
		d.ID = DeckID(i + 1)
		out = append(out, d)
	}
	return out
}

type gameColumns struct {
	deck, winner, fun, p2, p3, p4, notes, bracket int
}

func gameColumnsOf(header []any) gameColumns {
	h := Headers(header)
	return gameColumns{
		deck:    indexOf(h, "deck"),
		winner:  indexOf(h, "winner"),
		fun:     indexOf(h, "fun"),
		p2:      indexOf(h, "p2 fun"),
		p3:      indexOf(h, "p3 fun"),
		p4:      indexOf(h, "p4 fun"),
		notes:   indexOf(h, "notes"),
		bracket: indexOf(h, "est. pod bracket"),
	}
}

func numberAt(row []any, idx int) *float64 {
	if idx == -1 {
		return nil
	}
	return ToNumberOrNull(cellAt(row, idx))
}

func (c gameColumns) game(row []any) *domain.Game {
	g := &domain.Game{
		Winner:     numberAt(row, c.winner),
		Fun:        numberAt(row, c.fun),
		P2Fun:      numberAt(row, c.p2),
		P3Fun:      numberAt(row, c.p3),
		P4Fun:      numberAt(row, c.p4),
		EstBracket: numberAt(row, c.bracket),
	}
	if c.deck != -1 {
		g.DeckName = CellString(cellAt(row, c.deck))
	}
	if c.notes != -1 {
		g.Notes = stringOrNull(cellAt(row, c.notes))
	}
	return g
}

// GamesFromMatrix maps every non-empty data row into a game. The games carry no id.
func GamesFromMatrix(m Matrix) []*domain.Game {
	out := []*domain.Game{}
	if len(m) < 2 {
		return out
	}
	cols := gameColumnsOf(m[0])
	for _, row := range m[1:] {
		if isEmptyRow(row) {
			continue
		}
		out = append(out, cols.game(row))
	}
	return out
}

// GamesFromRows maps numbered rows into games with id "row-<sheet row>".
func GamesFromRows(header []any, rows []RowWithNumber) []*domain.Game {
	out := []*domain.Game{}
	if header == nil || len(rows) == 0 {
		return out
	}
	cols := gameColumnsOf(header)
	for _, r := range rows {
		if isEmptyRow(r.Row) {
			continue
		}
		g := cols.game(r.Row)
		g.ID = GameID(r.RowNumber)
		out = append(out, g)
	}
	return out
}

// WithGames returns a copy of deck carrying the games from the games matrix whose deck
// column equals the deck name. Each game points back at the deck.
func WithGames(deck *domain.Deck, games Matrix) *domain.Deck {
	out := deck.Clone()
	if out == nil {
		return nil
	}
	out.Games = []*domain.Game{}
	if len(games) == 0 {
		return out
	}
	rows := FilterRowsWithNumbers(games, []Filter{{Column: "deck", Match: deck.DeckName}})
	for _, g := range GamesFromRows(games[0], rows) {
		g.DeckName = deck.DeckName
		g.Deck = deck
		out.Games = append(out.Games, g)
	}
	return out
}

// DeckRow encodes a deck in Decks sheet column order.
func DeckRow(in domain.DeckInput) []any {
	return []any{
		in.DeckName,
		numberCell(in.TargetBracket),
		stringCell(in.Summary),
		stringCell(in.ArchidektLink),
	}
}

// GameRow encodes a game in Games sheet column order.
func GameRow(in domain.GameInput) []any {
	return []any{
		in.DeckName,
		numberCell(in.Winner),
		numberCell(in.Fun),
		numberCell(in.P2Fun),
		numberCell(in.P3Fun),
		numberCell(in.P4Fun),
		stringCell(in.Notes),
		numberCell(in.EstBracket),
	}
}

func numberCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func stringCell(v *string) any {
	if v == nil {
		return ""
	}
	return *v
}

// DeckID names the deck stored n rows below the Decks header.
func DeckID(n int) string { return deckIDPrefix + strconv.Itoa(n) }

// GameID names the game on 1-based Games sheet row n.
func GameID(n int) string { return gameIDPrefix + strconv.Itoa(n) }

// ParseDeckID returns the data-row position encoded in a deck id.
func ParseDeckID(id string) (int, error) {
	return parseID(id, deckIDPrefix, 1)
}

// ParseGameID returns the sheet row encoded in a game id. Row 1 is the header and never a game.
func ParseGameID(id string) (int, error) {
	return parseID(id, gameIDPrefix, 2)
}

func parseID(id, prefix string, lowest int) (int, error) {
	if !strings.HasPrefix(id, prefix) {
		return 0, fmt.Errorf("invalid id %q", id)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
	if err != nil || n < lowest {
		return 0, fmt.Errorf("invalid id %q", id)
	}
	return n, nil
}
