package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Winner seat convention: 1 is a win for the tracked deck, 2..4 is a win for an opponent seat.
// 0 is the legacy binary "lost" flag from older spreadsheets.
const (
	WinnerLegacyLoss = 0
	WinnerSelf       = 1
	WinnerSeatMin    = 2
	WinnerSeatMax    = 4
)

// Game is one recorded play session for a deck.
//
// DeckName is always populated. Deck is populated when the game was loaded as part of a
// deck detail view.
type Game struct {
	ID         string   `gorm:"type:text;primaryKey" json:"id,omitempty"`
	UserID     string   `gorm:"type:text;not null;index" json:"-"`
	DeckID     string   `gorm:"type:text;not null;index" json:"-"`
	DeckName   string   `gorm:"->;-:migration;column:deck_name" json:"deck"`
	Winner     *float64 `gorm:"column:winner" json:"winner"`
	Fun        *float64 `gorm:"column:fun" json:"fun"`
	P2Fun      *float64 `gorm:"column:p2_fun" json:"p2Fun"`
	P3Fun      *float64 `gorm:"column:p3_fun" json:"p3Fun"`
	P4Fun      *float64 `gorm:"column:p4_fun" json:"p4Fun"`
	Notes      *string  `gorm:"column:notes;type:text" json:"notes"`
	EstBracket *float64 `gorm:"column:est_bracket" json:"estBracket"`

	Deck *Deck `gorm:"foreignKey:DeckID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"-"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"-"`
}

func (Game) TableName() string { return "games" }

func (g *Game) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// seat returns the winner as a whole seat number. ok is false for a missing or fractional
// winner.
func (g *Game) seat() (int, bool) {
	if g.Winner == nil {
		return 0, false
	}
	w := *g.Winner
	if math.IsNaN(w) || math.IsInf(w, 0) || w != math.Trunc(w) {
		return 0, false
	}
	return int(w), true
}

// IsWin reports whether the tracked deck won.
func (g *Game) IsWin() bool {
	w, ok := g.seat()
	return ok && w == WinnerSelf
}

// IsLoss reports whether an opponent seat won.
func (g *Game) IsLoss() bool {
	w, ok := g.seat()
	return ok && w >= WinnerSeatMin && w <= WinnerSeatMax
}

// IsLegacyLoss reports whether the game carries the old binary loss flag.
func (g *Game) IsLegacyLoss() bool {
	w, ok := g.seat()
	return ok && w == WinnerLegacyLoss
}

// Players infers the table size from which opponent fun scores were recorded.
func (g *Game) Players() int {
	players := 1
	for _, v := range []*float64{g.P2Fun, g.P3Fun, g.P4Fun} {
		if v != nil {
			players++
		}
	}
	return players
}

// OthersFun returns the non-null opponent fun scores in seat order.
func (g *Game) OthersFun() []float64 {
	out := make([]float64, 0, 3)
	for _, v := range []*float64{g.P2Fun, g.P3Fun, g.P4Fun} {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}
