package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/yungbote/edh-dashboard-backend/internal/clients/decksites"
	"github.com/yungbote/edh-dashboard-backend/internal/pkg/pointers"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/apierr"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

const (
	ProviderArchidekt = "archidekt"
	ProviderMoxfield  = "moxfield"

	untitledDeck       = "Untitled Deck"
	msgUnsupportedLink = "Unsupported deck link."
)

var (
	archidektLinkRe = regexp.MustCompile(`(?i)^https?://(?:www\.)?archidekt\.com/decks/(\d+)`)
	moxfieldLinkRe  = regexp.MustCompile(`(?i)^https?://(?:www\.)?moxfield\.com/decks/([A-Za-z0-9_-]+)`)
)

// ParsedDeckLink describes a deck-builder URL. All fields are null for an empty link;
// Error is set for a link no provider recognizes.
type ParsedDeckLink struct {
	URL      *string `json:"url"`
	Provider *string `json:"provider"`
	ID       *string `json:"id"`
	Label    *string `json:"label"`
	Error    *string `json:"error"`
}

type DeckLinkPreview struct {
	Name       string   `json:"name"`
	Image      string   `json:"image"`
	Commanders []string `json:"commanders"`
}

// ParseDeckLink recognizes Archidekt and Moxfield deck URLs. Blank input and the "-"
// placeholder parse as an empty link.
func ParseDeckLink(raw string) ParsedDeckLink {
	u := strings.TrimSpace(raw)
	if u == "" || u == "-" {
		return ParsedDeckLink{}
	}
	if m := archidektLinkRe.FindStringSubmatch(u); m != nil {
		return ParsedDeckLink{URL: &u, Provider: pointers.String(ProviderArchidekt), ID: &m[1], Label: pointers.String("Archidekt")}
	}
	if m := moxfieldLinkRe.FindStringSubmatch(u); m != nil {
		return ParsedDeckLink{URL: &u, Provider: pointers.String(ProviderMoxfield), ID: &m[1], Label: pointers.String("Moxfield")}
	}
	return ParsedDeckLink{URL: &u, Error: pointers.String(msgUnsupportedLink)}
}

type DeckLinkService interface {
	Archidekt(ctx context.Context, id string) (json.RawMessage, error)
	Moxfield(ctx context.Context, id string) (json.RawMessage, error)
	// Preview loads the deck behind a link and extracts its name, art and commanders.
	Preview(ctx context.Context, link ParsedDeckLink) (*DeckLinkPreview, error)
}

type deckLinkService struct {
	log   *logger.Logger
	sites decksites.Client
}

func NewDeckLinkService(log *logger.Logger, sites decksites.Client) DeckLinkService {
	return &deckLinkService{
		log:   log.With("service", "DeckLinkService"),
		sites: sites,
	}
}

func (s *deckLinkService) Archidekt(ctx context.Context, id string) (json.RawMessage, error) {
	return s.sites.Archidekt(ctx, id)
}

func (s *deckLinkService) Moxfield(ctx context.Context, id string) (json.RawMessage, error) {
	return s.sites.Moxfield(ctx, id)
}

func (s *deckLinkService) Preview(ctx context.Context, link ParsedDeckLink) (*DeckLinkPreview, error) {
	if link.Error != nil {
		return nil, apierr.BadRequest(*link.Error)
	}
	if link.Provider == nil || link.ID == nil {
		return nil, apierr.BadRequest("Missing deck provider or id.")
	}
	switch *link.Provider {
	case ProviderArchidekt:
		raw, err := s.sites.Archidekt(ctx, *link.ID)
		if err != nil {
			return nil, err
		}
		return ArchidektPreview(raw)
	case ProviderMoxfield:
		raw, err := s.sites.Moxfield(ctx, *link.ID)
		if err != nil {
			return nil, err
		}
		return MoxfieldPreview(raw)
	default:
		return nil, apierr.BadRequest("Unsupported deck provider.")
	}
}

// ArchidektPreview reads an Archidekt deck document. Commanders are the cards of the first
// category whose name mentions "commander".
func ArchidektPreview(raw []byte) (*DeckLinkPreview, error) {
	var deck map[string]any
	if err := json.Unmarshal(raw, &deck); err != nil {
		return nil, fmt.Errorf("decode archidekt deck: %w", err)
	}
	out := &DeckLinkPreview{
		Name:       stringOr(deck["name"], untitledDeck),
		Image:      stringOr(deck["featured"], ""),
		Commanders: []string{},
	}
	categories, _ := deck["categories"].([]any)
	for _, c := range categories {
		name, _ := dig(c, "name").(string)
		if !strings.Contains(strings.ToLower(name), "commander") {
			continue
		}
		cards, _ := dig(c, "cards").([]any)
		var names []string
		for _, entry := range cards {
			if n := firstString(dig(entry, "card", "oracleCard", "name"), dig(entry, "card", "oracle_card", "name")); n != "" {
				names = append(names, n)
			}
		}
		out.Commanders = dedupe(names)
		break
	}
	return out, nil
}

var moxfieldCommanderBoards = []string{"mainboard", "sideboard", "maybeboard", "commanderboard", "commanders"}

// MoxfieldPreview reads a Moxfield deck document. Commander entries come from the
// dedicated commander fields and from any board entry tagged as a commander; the first
// commander with art supplies the image.
func MoxfieldPreview(raw []byte) (*DeckLinkPreview, error) {
	var deck map[string]any
	if err := json.Unmarshal(raw, &deck); err != nil {
		return nil, fmt.Errorf("decode moxfield deck: %w", err)
	}

	var entries []any
	for _, k := range []string{"commanders", "commander", "commanderCards", "commanderCard"} {
		entries = append(entries, toList(deck[k])...)
	}
	for _, board := range moxfieldCommanderBoards {
		for _, entry := range toList(deck[board]) {
			if flag, _ := dig(entry, "isCommander").(bool); flag {
				entries = append(entries, entry)
				continue
			}
			kind := firstString(dig(entry, "boardType"), dig(entry, "board"), dig(entry, "type"), dig(entry, "section"))
			if strings.Contains(strings.ToLower(kind), "commander") {
				entries = append(entries, entry)
			}
		}
	}

	out := &DeckLinkPreview{Name: stringOr(deck["name"], untitledDeck)}
	var names []string
	for _, entry := range entries {
		card := dig(entry, "card")
		if card == nil {
			card = entry
		}
		if n := cardName(card); n != "" {
			names = append(names, n)
		}
		if out.Image == "" {
			out.Image = cardImage(card)
		}
	}
	out.Commanders = dedupe(names)
	return out, nil
}

func cardName(card any) string {
	return firstString(
		dig(card, "name"),
		dig(card, "card", "name"),
		dig(card, "oracleCard", "name"),
		dig(card, "oracle_card", "name"),
		dig(card, "scryfallCard", "name"),
	)
}

// cardImage prefers the card's own image URIs and falls back to Scryfall's art crop path
// derived from the Scryfall id.
func cardImage(card any) string {
	var uris any
	for _, path := range [][]string{
		{"image_uris"}, {"imageUris"},
		{"card", "image_uris"}, {"card", "imageUris"},
		{"scryfallCard", "image_uris"}, {"scryfallCard", "imageUris"},
		{"oracleCard", "image_uris"}, {"oracleCard", "imageUris"},
	} {
		if v := dig(card, path...); v != nil {
			uris = v
			break
		}
	}
	switch u := uris.(type) {
	case string:
		if u != "" {
			return u
		}
	case map[string]any:
		for _, size := range []string{"art_crop", "border_crop", "normal", "large", "small"} {
			if s, ok := u[size].(string); ok && s != "" {
				return s
			}
		}
	}

	id := firstString(
		dig(card, "scryfall_id"),
		dig(card, "scryfallId"),
		dig(card, "scryfallCard", "id"),
		dig(card, "scryfallCard", "scryfall_id"),
	)
	if len(id) >= 2 {
		return fmt.Sprintf("https://cards.scryfall.io/art_crop/front/%c/%c/%s.jpg", id[0], id[1], id)
	}
	return ""
}

func dig(v any, keys ...string) any {
	for _, k := range keys {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[k]
	}
	return v
}

// toList flattens arrays and keyed objects (ordered by key) into a slice.
func toList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			out = append(out, t[k])
		}
		return out
	}
	return nil
}

func firstString(vals ...any) string {
	for _, v := range vals {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
