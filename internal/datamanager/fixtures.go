package datamanager

import (
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
	"github.com/yungbote/edh-dashboard-backend/internal/tabular"
)

// FixtureSheets returns fresh copies of the sheets served in end-to-end test mode.
func FixtureSheets() map[string]tabular.Matrix {
	return map[string]tabular.Matrix{
		tabular.DecksSheet: {
			{"Name", "Target Bracket", "Summary", "Archidekt Link"},
			{"Deck Alpha", 3.0, "Alpha summary deck for e2e tests.", "https://archidekt.com/decks/12345/alpha"},
			{"Deck Beta", 2.0, "Beta summary deck for e2e tests.", "https://archidekt.com/decks/67890/beta"},
		},
		tabular.GamesSheet: {
			{"Deck", "Winner", "Fun", "P2 Fun", "P3 Fun", "P4 Fun", "Notes", "Est. Pod Bracket"},
			{"Deck Alpha", 1.0, 4.0, 3.0, 3.0, 3.0, "alpha win", 3.0},
			{"Deck Beta", 2.0, 2.0, 3.0, 3.0, 2.0, "beta loss", 2.0},
			{"Deck Alpha", 1.0, 5.0, 4.0, 4.0, 4.0, "alpha win 2", 4.0},
		},
	}
}

// NewFixtures returns a spreadsheet manager over src, typically a tabular.Memory seeded with
// FixtureSheets. Writes land in src, so a shared Memory keeps them for the process lifetime.
func NewFixtures(log *logger.Logger, src *tabular.Memory) DataManager {
	if src == nil {
		src = tabular.NewMemory(FixtureSheets())
	}
	return NewSheets(log.With("fixtures", true), src)
}
