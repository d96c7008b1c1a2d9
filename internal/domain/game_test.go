package domain

import (
	"math"
	"testing"
)

func TestGameWinnerSeats(t *testing.T) {
	cases := []struct {
		winner     *float64
		win, loss  bool
		legacyLoss bool
	}{
		{nil, false, false, false},
		{ptr(0), false, false, true},
		{ptr(1), true, false, false},
		{ptr(2), false, true, false},
		{ptr(4), false, true, false},
		{ptr(5), false, false, false},
		{ptr(2.5), false, false, false},
		{ptr(0.5), false, false, false},
		{ptr(1.0000001), false, false, false},
		{ptr(math.Inf(1)), false, false, false},
		{ptr(math.NaN()), false, false, false},
	}
	for _, tc := range cases {
		g := &Game{Winner: tc.winner}
		if g.IsWin() != tc.win || g.IsLoss() != tc.loss || g.IsLegacyLoss() != tc.legacyLoss {
			t.Errorf("winner %v: win=%v loss=%v legacy=%v", deref(tc.winner), g.IsWin(), g.IsLoss(), g.IsLegacyLoss())
		}
	}
}

func ptr(v float64) *float64 { return &v }

func deref(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
