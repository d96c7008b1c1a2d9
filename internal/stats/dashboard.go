package stats

import (
	"sort"
	"strings"

	"github.com/yungbote/edh-dashboard-backend/internal/domain"
)

type deckAccumulator struct {
	games     int
	wins      int
	losses    int
	funSelf   []float64
	funOthers []float64
}

// DeckRows builds the per-deck dashboard table from raw games.
//
// Games are grouped by trimmed deck name; games without a deck name are skipped. Row ids
// come from decks matched by name and fall back to the name itself.
func DeckRows(games []*domain.Game, decks []*domain.Deck) []*domain.DeckStatsRow {
	idByName := make(map[string]string, len(decks))
	for _, d := range decks {
		if d == nil {
			continue
		}
		id := d.ID
		if id == "" {
			id = d.DeckName
		}
		idByName[d.DeckName] = id
	}

	acc := map[string]*deckAccumulator{}
	for _, g := range games {
		if g == nil {
			continue
		}
		name := strings.TrimSpace(g.DeckName)
		if name == "" && g.Deck != nil {
			name = strings.TrimSpace(g.Deck.DeckName)
		}
		if name == "" {
			continue
		}
		cur, ok := acc[name]
		if !ok {
			cur = &deckAccumulator{}
			acc[name] = cur
		}
		cur.games++
		switch {
		case g.IsWin():
			cur.wins++
		case g.IsLoss():
			cur.losses++
		}
		if g.Fun != nil {
			cur.funSelf = append(cur.funSelf, *g.Fun)
		}
		cur.funOthers = append(cur.funOthers, g.OthersFun()...)
	}

	rows := make([]*domain.DeckStatsRow, 0, len(acc))
	for name, a := range acc {
		id, ok := idByName[name]
		if !ok {
			id = name
		}
		row := &domain.DeckStatsRow{
			ID:           id,
			Name:         name,
			Games:        a.games,
			Wins:         a.wins,
			Losses:       a.losses,
			AvgFunSelf:   Average(a.funSelf),
			AvgFunOthers: Average(a.funOthers),
		}
		if a.games > 0 {
			row.WinRate = float64(a.wins) / float64(a.games) * 100
		}
		rows = append(rows, row)
	}

	ApplyUsage(rows)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Games != rows[j].Games {
			return rows[i].Games > rows[j].Games
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// ApplyUsage sets UsagePercent on each row as its share of all games in rows.
func ApplyUsage(rows []*domain.DeckStatsRow) {
	total := 0
	for _, r := range rows {
		total += r.Games
	}
	for _, r := range rows {
		if total > 0 {
			r.UsagePercent = float64(r.Games) / float64(total) * 100
		} else {
			r.UsagePercent = 0
		}
	}
}

// Dashboard aggregates account-wide stats plus the per-deck table.
// With no games the stats are nil and the table is empty.
func Dashboard(games []*domain.Game, decks []*domain.Deck) *domain.DashboardStats {
	if len(games) == 0 {
		return &domain.DashboardStats{Stats: nil, DeckStats: []*domain.DeckStatsRow{}}
	}
	s := FromGames(games)
	return &domain.DashboardStats{
		Stats:     &s,
		DeckStats: DeckRows(games, decks),
	}
}
