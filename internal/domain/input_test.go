package domain

import "testing"

func TestDeckInputNormalize(t *testing.T) {
	summary, link := "  ", "  https://archidekt.com/decks/1  "
	in := DeckUpdateInput{
		DeckInput: DeckInput{DeckName: "  Atraxa ", Summary: &summary, ArchidektLink: &link},
		DeckID:    " deck-2 ",
	}
	in.Normalize()
	if in.DeckName != "Atraxa" || in.DeckID != "deck-2" {
		t.Fatalf("names not trimmed: %+v", in)
	}
	if in.Summary != nil {
		t.Fatalf("blank summary should be nil, got %q", *in.Summary)
	}
	if in.ArchidektLink == nil || *in.ArchidektLink != "https://archidekt.com/decks/1" {
		t.Fatalf("link not trimmed: %v", in.ArchidektLink)
	}
}

func TestGameInputNormalize(t *testing.T) {
	notes := "\t"
	in := GameUpdateInput{GameInput: GameInput{DeckName: " Deck ", Notes: &notes}, GameID: " row-3"}
	in.Normalize()
	if in.DeckName != "Deck" || in.GameID != "row-3" || in.Notes != nil {
		t.Fatalf("unexpected %+v", in)
	}
}
