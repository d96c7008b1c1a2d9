package gcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/yungbote/edh-dashboard-backend/internal/platform/apierr"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
	"github.com/yungbote/edh-dashboard-backend/internal/tabular"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// SpreadsheetFile is one entry of the Drive spreadsheet listing.
type SpreadsheetFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Workspace wraps the Drive and Sheets APIs for one signed-in user.
type Workspace struct {
	log    *logger.Logger
	sheets *sheets.Service
	drive  *drive.Service
}

func NewWorkspace(ctx context.Context, log *logger.Logger, ts oauth2.TokenSource, extra ...option.ClientOption) (*Workspace, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	opts := ClientOptions(ts, extra...)
	sheetsSvc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive client: %w", err)
	}
	return &Workspace{
		log:    log.With("client", "gcp.Workspace"),
		sheets: sheetsSvc,
		drive:  driveSvc,
	}, nil
}

func (w *Workspace) ListSpreadsheets(ctx context.Context) ([]SpreadsheetFile, error) {
	out := []SpreadsheetFile{}
	err := w.drive.Files.List().
		Q(fmt.Sprintf("mimeType='%s'", spreadsheetMimeType)).
		Fields("nextPageToken", "files(id, name)").
		Context(ctx).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				out = append(out, SpreadsheetFile{ID: f.Id, Name: f.Name})
			}
			return nil
		})
	if err != nil {
		return nil, upstream("list spreadsheets", err)
	}
	return out, nil
}

// ReadRange returns the raw cells of an A1 range.
func (w *Workspace) ReadRange(ctx context.Context, spreadsheetID, rng string) (tabular.Matrix, error) {
	resp, err := w.sheets.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, upstream("read range", err)
	}
	out := make(tabular.Matrix, 0, len(resp.Values))
	for _, row := range resp.Values {
		out = append(out, row)
	}
	return out, nil
}

// Spreadsheet returns a tabular.Source over one spreadsheet.
func (w *Workspace) Spreadsheet(spreadsheetID string) *SheetSource {
	return &SheetSource{w: w, id: spreadsheetID}
}

// upstream maps a Google API failure onto an apierr carrying Google's status code.
func upstream(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code > 0 {
		msg := gerr.Message
		if msg == "" {
			msg = http.StatusText(gerr.Code)
		}
		return apierr.Newf(gerr.Code, "google_api", "%s: %s", op, msg)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// URL is the browser link for a spreadsheet.
func URL(spreadsheetID string) string {
	return "https://docs.google.com/spreadsheets/d/" + spreadsheetID
}
