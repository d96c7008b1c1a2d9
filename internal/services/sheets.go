package services

import (
	"context"
	_ "embed"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/edh-dashboard-backend/internal/clients/gcp"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/apierr"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
	"github.com/yungbote/edh-dashboard-backend/internal/tabular"
)

const (
	DefaultReadRange  = "Sheet1!A1:D10"
	databaseTitle     = "EDH Deck Database"
	sampleTitle       = "EDH Demo Database (with sample decks)"
	sampleGameCount   = 5000
	sampleNoteEvery   = 10
	sampleNote        = "Testing game for analytics"
	deckValidationEnd = 1000
	gameValidationEnd = 5000
)

//go:embed samples/decks.yaml
var sampleDecksYAML []byte

type SampleDeck struct {
	Name          string `yaml:"name"`
	TargetBracket int    `yaml:"targetBracket"`
	Summary       string `yaml:"summary"`
	Link          string `yaml:"link"`
}

// LoadSampleDecks parses the embedded sample deck catalogue.
func LoadSampleDecks() ([]SampleDeck, error) {
	var out []SampleDeck
	if err := yaml.Unmarshal(sampleDecksYAML, &out); err != nil {
		return nil, fmt.Errorf("parse sample decks: %w", err)
	}
	return out, nil
}

type CreatedSpreadsheet struct {
	SpreadsheetID string `json:"spreadsheetId"`
	URL           string `json:"url"`
}

// WorkspaceFactory opens the Google APIs for one user.
type WorkspaceFactory func(ctx context.Context, ts oauth2.TokenSource) (*gcp.Workspace, error)

type SheetsService interface {
	ListSpreadsheets(ctx context.Context, sessionID string) ([]gcp.SpreadsheetFile, error)
	ReadRange(ctx context.Context, sessionID, spreadsheetID, rng string) (tabular.Matrix, error)
	CreateDatabase(ctx context.Context, sessionID string) (*CreatedSpreadsheet, error)
	CreateSample(ctx context.Context, sessionID string) (*CreatedSpreadsheet, error)
	// Source opens spreadsheetID as a deck database.
	Source(ctx context.Context, sessionID, spreadsheetID string) (tabular.Source, error)
}

type sheetsService struct {
	log       *logger.Logger
	auth      AuthService
	workspace WorkspaceFactory
	newRand   func() *rand.Rand
}

func NewSheetsService(log *logger.Logger, auth AuthService, workspace WorkspaceFactory) SheetsService {
	serviceLog := log.With("service", "SheetsService")
	if workspace == nil {
		workspace = func(ctx context.Context, ts oauth2.TokenSource) (*gcp.Workspace, error) {
			return gcp.NewWorkspace(ctx, serviceLog, ts)
		}
	}
	return &sheetsService{
		log:       serviceLog,
		auth:      auth,
		workspace: workspace,
		newRand: func() *rand.Rand {
			now := uint64(time.Now().UnixNano())
			return rand.New(rand.NewPCG(now, now>>1|1))
		},
	}
}

func (ss *sheetsService) open(ctx context.Context, sessionID string) (*gcp.Workspace, error) {
	ts, err := ss.auth.TokenSource(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return ss.workspace(ctx, ts)
}

func (ss *sheetsService) ListSpreadsheets(ctx context.Context, sessionID string) ([]gcp.SpreadsheetFile, error) {
	ws, err := ss.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return ws.ListSpreadsheets(ctx)
}

func (ss *sheetsService) ReadRange(ctx context.Context, sessionID, spreadsheetID, rng string) (tabular.Matrix, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, apierr.BadRequest("Missing spreadsheetId query parameter")
	}
	if rng == "" {
		rng = DefaultReadRange
	}
	ws, err := ss.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return ws.ReadRange(ctx, spreadsheetID, rng)
}

func (ss *sheetsService) Source(ctx context.Context, sessionID, spreadsheetID string) (tabular.Source, error) {
	ws, err := ss.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return ws.Spreadsheet(spreadsheetID), nil
}

func (ss *sheetsService) CreateDatabase(ctx context.Context, sessionID string) (*CreatedSpreadsheet, error) {
	return ss.create(ctx, sessionID, databaseTitle, map[string]tabular.Matrix{
		tabular.DecksSheet: {tabular.DeckHeader},
		tabular.GamesSheet: {tabular.GameHeader},
	})
}

func (ss *sheetsService) CreateSample(ctx context.Context, sessionID string) (*CreatedSpreadsheet, error) {
	decks, err := LoadSampleDecks()
	if err != nil {
		return nil, err
	}
	return ss.create(ctx, sessionID, sampleTitle, SampleSheets(ss.newRand(), decks, sampleGameCount))
}

func (ss *sheetsService) create(ctx context.Context, sessionID, title string, data map[string]tabular.Matrix) (*CreatedSpreadsheet, error) {
	ws, err := ss.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	id, err := ws.CreateSpreadsheet(ctx, DatabaseSpreadsheet(title, data))
	if err != nil {
		return nil, err
	}
	return &CreatedSpreadsheet{SpreadsheetID: id, URL: gcp.URL(id)}, nil
}

// DatabaseSpreadsheet lays out a Decks and a Games sheet with the validation the dashboard
// relies on: brackets and fun scores in range, winner seat 1..4, and the game deck picked
// from the deck list.
func DatabaseSpreadsheet(title string, data map[string]tabular.Matrix) gcp.NewSpreadsheet {
	return gcp.NewSpreadsheet{
		Title:  title,
		Sheets: []string{tabular.DecksSheet, tabular.GamesSheet},
		Data:   data,
		NumberRules: []gcp.NumberRule{
			{Sheet: tabular.DecksSheet, StartRow: 1, EndRow: deckValidationEnd, StartCol: 1, EndCol: 2, Lo: 1, Hi: 5},
			{Sheet: tabular.GamesSheet, StartRow: 1, EndRow: gameValidationEnd, StartCol: 1, EndCol: 2, Lo: 1, Hi: 4},
			{Sheet: tabular.GamesSheet, StartRow: 1, EndRow: gameValidationEnd, StartCol: 2, EndCol: 6, Lo: 1, Hi: 5},
			{Sheet: tabular.GamesSheet, StartRow: 1, EndRow: gameValidationEnd, StartCol: 7, EndCol: 8, Lo: 1, Hi: 5},
		},
		ListRules: []gcp.ListRule{
			{Sheet: tabular.GamesSheet, StartRow: 1, EndRow: gameValidationEnd, StartCol: 0, EndCol: 1, SourceRange: "Decks!A2:A"},
		},
	}
}

// SampleSheets builds the demo Decks sheet from decks plus n random games. Each game's
// estimated bracket is its deck's target bracket shifted by at most one, clamped to 1..5.
func SampleSheets(r *rand.Rand, decks []SampleDeck, n int) map[string]tabular.Matrix {
	deckSheet := tabular.Matrix{tabular.DeckHeader}
	for _, d := range decks {
		deckSheet = append(deckSheet, []any{d.Name, d.TargetBracket, d.Summary, d.Link})
	}
	games := tabular.Matrix{tabular.GameHeader}
	if len(decks) > 0 {
		between := func(lo, hi int) int { return lo + r.IntN(hi-lo+1) }
		for i := 0; i < n; i++ {
			d := decks[r.IntN(len(decks))]
			est := min(5, max(1, d.TargetBracket+between(-1, 1)))
			note := ""
			if i%sampleNoteEvery == 0 {
				note = sampleNote
			}
			games = append(games, []any{
				d.Name,
				between(1, 4),
				between(1, 5),
				between(1, 5),
				between(1, 5),
				between(1, 5),
				note,
				est,
			})
		}
	}
	return map[string]tabular.Matrix{
		tabular.DecksSheet: deckSheet,
		tabular.GamesSheet: games,
	}
}
