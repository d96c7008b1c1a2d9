package stats

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/edh-dashboard-backend/internal/domain"
	"github.com/yungbote/edh-dashboard-backend/internal/pkg/pointers"
)

func f(v float64) *float64 { return pointers.Float64(v) }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-4 }

func mustApprox(t *testing.T, name string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s: got nil want %v", name, want)
	}
	if !approx(*got, want) {
		t.Fatalf("%s: got %v want %v", name, *got, want)
	}
}

func TestAverageAndStandardDeviation(t *testing.T) {
	if Average(nil) != nil {
		t.Fatalf("Average(nil) should be nil")
	}
	if Average([]float64{}) != nil {
		t.Fatalf("Average([]) should be nil")
	}
	mustApprox(t, "avg", Average([]float64{1, 2, 3, 6}), 3)

	if StandardDeviation([]float64{5}) != nil {
		t.Fatalf("StandardDeviation of one value should be nil")
	}
	mustApprox(t, "std", StandardDeviation([]float64{1, 2, 3}), 1)
	mustApprox(t, "std", StandardDeviation([]float64{8, 4}), 2.8284)
}

func TestFromGamesEmpty(t *testing.T) {
	got := FromGames(nil)
	want := domain.Stats{}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("empty stats mismatch (-want +got):\n%s", diff)
	}
}

func twoGames() []*domain.Game {
	return []*domain.Game{
		{DeckName: "A", Winner: f(1), Fun: f(8), P2Fun: f(7), EstBracket: f(3)},
		{DeckName: "A", Winner: f(2), Fun: f(4), P2Fun: f(5), P3Fun: f(5), P4Fun: f(5), EstBracket: f(2)},
	}
}

func TestFromGamesWinsLossesAndAverages(t *testing.T) {
	s := FromGames(twoGames())

	if s.TotalGames != 2 || s.Wins != 1 || s.Losses != 1 {
		t.Fatalf("unexpected tally: %+v", s)
	}
	if !approx(s.WinRate, 0.5) {
		t.Fatalf("winRate: got %v", s.WinRate)
	}
	mustApprox(t, "avgFunSelf", s.AvgFunSelf, 6)
	mustApprox(t, "stdFunSelf", s.StdFunSelf, 2.8284)
	mustApprox(t, "avgFunOthers", s.AvgFunOthers, 5.5)
	mustApprox(t, "avgFunWins", s.AvgFunWins, 8)
	if s.AvgFunLosses != nil {
		t.Fatalf("avgFunLosses: got %v want nil", *s.AvgFunLosses)
	}
	mustApprox(t, "avgEstBracket", s.AvgEstBracket, 2.5)
	// (1/2 + 1/4) / 2
	if !approx(s.ExpectedWinrate, 0.375) {
		t.Fatalf("expectedWinrate: got %v", s.ExpectedWinrate)
	}
}

func TestFromGamesLegacyLossFlagAndUnknownWinners(t *testing.T) {
	games := []*domain.Game{
		{Winner: f(0), Fun: f(2)},
		{Winner: f(7), Fun: f(4)},
		{Winner: nil, Fun: f(3)},
		{Winner: f(2.5)},
	}
	s := FromGames(games)
	if s.TotalGames != 4 || s.Wins != 0 || s.Losses != 0 {
		t.Fatalf("unexpected tally: %+v", s)
	}
	mustApprox(t, "avgFunLosses", s.AvgFunLosses, 2)
	mustApprox(t, "avgFunSelf", s.AvgFunSelf, 3)
	if s.WinRate != 0 {
		t.Fatalf("winRate: got %v", s.WinRate)
	}
	// no opponent scores: every game counts as a one-player table
	if !approx(s.ExpectedWinrate, 1) {
		t.Fatalf("expectedWinrate: got %v", s.ExpectedWinrate)
	}
	if s.Wins+s.Losses > s.TotalGames {
		t.Fatalf("wins+losses exceeds total")
	}
}

func TestFromGamesExpectedWinrateFromTableSize(t *testing.T) {
	games := []*domain.Game{
		{Winner: f(1), Fun: f(5), P2Fun: f(4), P3Fun: f(3), P4Fun: f(2)},
		{Winner: f(2), Fun: f(3), P2Fun: f(4), P3Fun: f(3)},
	}
	s := FromGames(games)
	want := (1.0/4 + 1.0/3) / 2
	if !approx(s.ExpectedWinrate, want) {
		t.Fatalf("expectedWinrate: got %v want %v", s.ExpectedWinrate, want)
	}
}

func TestFromGamesIsIdempotent(t *testing.T) {
	games := twoGames()
	first := FromGames(games)
	second := FromGames(games)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("aggregation not idempotent (-first +second):\n%s", diff)
	}
}

func TestWithStatsFromGames(t *testing.T) {
	deck := &domain.Deck{DeckName: "A", Games: twoGames()}
	out := WithStatsFromGames(deck)
	if out.Stats == nil {
		t.Fatalf("expected stats to be derived")
	}
	if deck.Stats != nil {
		t.Fatalf("input deck must not be mutated")
	}
	want := FromGames(deck.Games)
	if diff := cmp.Diff(&want, out.Stats); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}

	empty := &domain.Deck{DeckName: "B"}
	if got := WithStatsFromGames(empty); got != empty || got.Stats != nil {
		t.Fatalf("deck without games should be returned unchanged")
	}

	preset := &domain.Deck{DeckName: "C", Games: twoGames(), Stats: &domain.Stats{TotalGames: 99}}
	if got := WithStatsFromGames(preset); got.Stats.TotalGames != 99 {
		t.Fatalf("existing stats should be kept")
	}
}
