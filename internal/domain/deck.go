package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Deck is a named Commander deck owned by one user.
//
// Stats and Games are never persisted on the deck row itself; they are attached by the
// data managers when a caller asks for a deck detail view.
type Deck struct {
	ID            string   `gorm:"type:text;primaryKey" json:"id,omitempty"`
	UserID        string   `gorm:"type:text;not null;uniqueIndex:idx_decks_user_name,priority:1;index" json:"-"`
	DeckName      string   `gorm:"column:name;type:text;not null;uniqueIndex:idx_decks_user_name,priority:2" json:"deckName"`
	TargetBracket *float64 `gorm:"column:target_bracket" json:"targetBracket"`
	Summary       *string  `gorm:"column:summary;type:text" json:"summary"`
	ArchidektLink *string  `gorm:"column:archidekt_link;type:text" json:"archidektLink"`

	Stats *Stats  `gorm:"-" json:"stats,omitempty"`
	Games []*Game `gorm:"-" json:"games,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"-"`
}

func (Deck) TableName() string { return "decks" }

func (d *Deck) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// Clone returns a shallow copy that can be decorated with games/stats without mutating d.
func (d *Deck) Clone() *Deck {
	if d == nil {
		return nil
	}
	cp := *d
	return &cp
}
