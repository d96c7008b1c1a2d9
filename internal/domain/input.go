package domain

import "strings"

// DeckInput carries the editable deck fields from the deck form.
type DeckInput struct {
	DeckName      string   `json:"deckName" binding:"required"`
	TargetBracket *float64 `json:"targetBracket" binding:"omitempty,gte=1,lte=5"`
	Summary       *string  `json:"summary"`
	ArchidektLink *string  `json:"archidektLink" binding:"omitempty,decklink"`
}

type DeckUpdateInput struct {
	DeckInput
	DeckID       string `json:"deckId" binding:"required"`
	OriginalName string `json:"originalName" binding:"required"`
}

// GameInput carries one game result. DeckName selects the deck the game belongs to.
type GameInput struct {
	DeckName   string   `json:"deckName"`
	Winner     *float64 `json:"winner" binding:"omitempty,gte=0,lte=4"`
	Fun        *float64 `json:"fun" binding:"omitempty,gte=1,lte=5"`
	P2Fun      *float64 `json:"p2Fun" binding:"omitempty,gte=1,lte=5"`
	P3Fun      *float64 `json:"p3Fun" binding:"omitempty,gte=1,lte=5"`
	P4Fun      *float64 `json:"p4Fun" binding:"omitempty,gte=1,lte=5"`
	Notes      *string  `json:"notes"`
	EstBracket *float64 `json:"estBracket" binding:"omitempty,gte=1,lte=5"`
}

type GameUpdateInput struct {
	GameInput
	GameID string `json:"gameId"`
}

// Normalize trims text fields and turns blank optional text into nil.
func (in *DeckInput) Normalize() {
	in.DeckName = strings.TrimSpace(in.DeckName)
	in.Summary = blankToNil(in.Summary)
	in.ArchidektLink = blankToNil(in.ArchidektLink)
}

func (in *DeckUpdateInput) Normalize() {
	in.DeckInput.Normalize()
	in.DeckID = strings.TrimSpace(in.DeckID)
}

func (in *GameInput) Normalize() {
	in.DeckName = strings.TrimSpace(in.DeckName)
	in.Notes = blankToNil(in.Notes)
}

func (in *GameUpdateInput) Normalize() {
	in.GameInput.Normalize()
	in.GameID = strings.TrimSpace(in.GameID)
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
