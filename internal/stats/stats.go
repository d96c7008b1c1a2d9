// Package stats turns game records into win-rate and fun-score aggregates.
//
// Everything here is pure: the same input always yields the same output and nothing is
// retained between calls.
package stats

import (
	"math"

	"github.com/yungbote/edh-dashboard-backend/internal/domain"
)

// Average returns the arithmetic mean, or nil for an empty slice.
func Average(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))
	return &avg
}

// StandardDeviation returns the sample standard deviation (n-1), or nil with fewer than two values.
func StandardDeviation(values []float64) *float64 {
	if len(values) < 2 {
		return nil
	}
	avg := *Average(values)
	acc := 0.0
	for _, v := range values {
		acc += (v - avg) * (v - avg)
	}
	std := math.Sqrt(acc / float64(len(values)-1))
	return &std
}

// FromGames computes Stats in a single pass over games.
//
// Winner 1 counts as a win and 2..4 as a loss; every other value is left out of the tally
// but still contributes fun, bracket and table-size data. The losses-only fun bucket is fed
// by the legacy 0 flag.
func FromGames(games []*domain.Game) domain.Stats {
	var (
		totalGames   int
		wins, losses int
		funSelf      []float64
		funOthers    []float64
		funWins      []float64
		funLosses    []float64
		estBrackets  []float64
		expectedWins float64
	)

	for _, g := range games {
		if g == nil {
			continue
		}
		totalGames++

		switch {
		case g.IsWin():
			wins++
		case g.IsLoss():
			losses++
		}

		if g.Fun != nil {
			funSelf = append(funSelf, *g.Fun)
			if g.IsWin() {
				funWins = append(funWins, *g.Fun)
			} else if g.IsLegacyLoss() {
				funLosses = append(funLosses, *g.Fun)
			}
		}

		funOthers = append(funOthers, g.OthersFun()...)

		if g.EstBracket != nil {
			estBrackets = append(estBrackets, *g.EstBracket)
		}

		expectedWins += 1 / float64(g.Players())
	}

	out := domain.Stats{
		TotalGames:    totalGames,
		Wins:          wins,
		Losses:        losses,
		AvgFunSelf:    Average(funSelf),
		StdFunSelf:    StandardDeviation(funSelf),
		AvgFunOthers:  Average(funOthers),
		AvgFunWins:    Average(funWins),
		AvgFunLosses:  Average(funLosses),
		AvgEstBracket: Average(estBrackets),
	}
	if totalGames > 0 {
		out.WinRate = float64(wins) / float64(totalGames)
		out.ExpectedWinrate = expectedWins / float64(totalGames)
	}
	return out
}

// WithStatsFromGames returns a copy of deck with Stats derived from its games.
// Decks that already carry stats, or have no games, are returned unchanged.
func WithStatsFromGames(deck *domain.Deck) *domain.Deck {
	if deck == nil || len(deck.Games) == 0 || deck.Stats != nil {
		return deck
	}
	out := deck.Clone()
	s := FromGames(deck.Games)
	out.Stats = &s
	return out
}
