package handlers

import "testing"

func TestValidDeckLink(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"-", true},
		{"https://archidekt.com/decks/123/alpha", true},
		{"https://www.moxfield.com/decks/AbC-9", true},
		{"https://tappedout.net/mtg-decks/alpha/", true},
		{" http://example.com/d/1 ", true},
		{"ftp://example.com/d/1", false},
		{"example.com/d/1", false},
		{"https://", false},
		{"not a link", false},
	}
	for _, tc := range cases {
		if got := validDeckLink(tc.in); got != tc.want {
			t.Errorf("validDeckLink(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
