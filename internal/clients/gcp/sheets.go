package gcp

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"google.golang.org/api/sheets/v4"

	"github.com/yungbote/edh-dashboard-backend/internal/tabular"
)

// SheetSource is a tabular.Source backed by a live spreadsheet.
type SheetSource struct {
	w  *Workspace
	id string

	mu       sync.Mutex
	sheetIDs map[string]int64
}

func (s *SheetSource) Read(ctx context.Context, rng string) (tabular.Matrix, error) {
	return s.w.ReadRange(ctx, s.id, rng)
}

func (s *SheetSource) Append(ctx context.Context, sheet string, row []any) error {
	_, err := s.w.sheets.Spreadsheets.Values.Append(s.id, quoteSheet(sheet)+"!A1", &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return upstream("append row", err)
	}
	return nil
}

func (s *SheetSource) UpdateRow(ctx context.Context, sheet string, rowNumber int, row []any) error {
	if rowNumber < 1 || len(row) == 0 {
		return fmt.Errorf("invalid row %d", rowNumber)
	}
	rng := fmt.Sprintf("%s!A%d:%s%d", quoteSheet(sheet), rowNumber, ColumnLetter(len(row)), rowNumber)
	_, err := s.w.sheets.Spreadsheets.Values.Update(s.id, rng, &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return upstream("update row", err)
	}
	return nil
}

// DeleteRows removes whole sheet rows in one batch, bottom-up so earlier deletions do not
// shift later ones.
func (s *SheetSource) DeleteRows(ctx context.Context, sheet string, rowNumbers []int) error {
	if len(rowNumbers) == 0 {
		return nil
	}
	sheetID, err := s.sheetID(ctx, sheet)
	if err != nil {
		return err
	}
	rows := append([]int(nil), rowNumbers...)
	sort.Sort(sort.Reverse(sort.IntSlice(rows)))

	reqs := make([]*sheets.Request, 0, len(rows))
	last := 0
	for _, r := range rows {
		if r < 1 {
			return fmt.Errorf("invalid row %d", r)
		}
		if r == last {
			continue
		}
		last = r
		reqs = append(reqs, &sheets.Request{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:         sheetID,
					Dimension:       "ROWS",
					StartIndex:      int64(r - 1),
					EndIndex:        int64(r),
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		})
	}
	_, err = s.w.sheets.Spreadsheets.BatchUpdate(s.id, &sheets.BatchUpdateSpreadsheetRequest{Requests: reqs}).
		Context(ctx).
		Do()
	if err != nil {
		return upstream("delete rows", err)
	}
	return nil
}

func (s *SheetSource) sheetID(ctx context.Context, title string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sheetIDs == nil {
		resp, err := s.w.sheets.Spreadsheets.Get(s.id).
			Fields("sheets.properties(sheetId,title)").
			Context(ctx).
			Do()
		if err != nil {
			return 0, upstream("get spreadsheet", err)
		}
		ids := make(map[string]int64, len(resp.Sheets))
		for _, sh := range resp.Sheets {
			if sh.Properties != nil {
				ids[sh.Properties.Title] = sh.Properties.SheetId
			}
		}
		s.sheetIDs = ids
	}
	id, ok := s.sheetIDs[title]
	if !ok {
		return 0, fmt.Errorf("sheet %q not found", title)
	}
	return id, nil
}

var _ tabular.Source = (*SheetSource)(nil)

// ColumnLetter converts a 1-based column number into its A1 letters.
func ColumnLetter(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

func quoteSheet(name string) string {
	if strings.ContainsAny(name, " '!") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}

// NumberRule limits a rectangular block to numbers between lo and hi.
type NumberRule struct {
	Sheet            string
	StartRow, EndRow int64
	StartCol, EndCol int64
	Lo, Hi           int
}

// ListRule limits a block to values found in another range, shown as a dropdown.
type ListRule struct {
	Sheet            string
	StartRow, EndRow int64
	StartCol, EndCol int64
	SourceRange      string
}

// NewSpreadsheet describes a spreadsheet to create: its title, the data written into each
// sheet starting at A1, and the validation rules to attach.
type NewSpreadsheet struct {
	Title       string
	Sheets      []string
	Data        map[string]tabular.Matrix
	NumberRules []NumberRule
	ListRules   []ListRule
}

// CreateSpreadsheet creates the spreadsheet, writes its data and attaches validation.
func (w *Workspace) CreateSpreadsheet(ctx context.Context, ns NewSpreadsheet) (string, error) {
	req := &sheets.Spreadsheet{Properties: &sheets.SpreadsheetProperties{Title: ns.Title}}
	for _, title := range ns.Sheets {
		req.Sheets = append(req.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{Title: title}})
	}
	created, err := w.sheets.Spreadsheets.Create(req).Context(ctx).Do()
	if err != nil {
		return "", upstream("create spreadsheet", err)
	}
	if created.SpreadsheetId == "" {
		return "", fmt.Errorf("create spreadsheet: missing id")
	}
	ids := map[string]int64{}
	for _, sh := range created.Sheets {
		if sh.Properties != nil {
			ids[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	for _, title := range ns.Sheets {
		if _, ok := ids[title]; !ok {
			return "", fmt.Errorf("create spreadsheet: missing sheet id for %s", title)
		}
	}

	var data []*sheets.ValueRange
	for _, title := range ns.Sheets {
		m := ns.Data[title]
		if len(m) == 0 {
			continue
		}
		width := 0
		for _, row := range m {
			if len(row) > width {
				width = len(row)
			}
		}
		values := make([][]interface{}, 0, len(m))
		for _, row := range m {
			values = append(values, row)
		}
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!A1:%s%d", quoteSheet(title), ColumnLetter(width), len(m)),
			Values: values,
		})
	}
	if len(data) > 0 {
		_, err = w.sheets.Spreadsheets.Values.BatchUpdate(created.SpreadsheetId, &sheets.BatchUpdateValuesRequest{
			ValueInputOption: "RAW",
			Data:             data,
		}).Context(ctx).Do()
		if err != nil {
			return "", upstream("write spreadsheet data", err)
		}
	}

	var reqs []*sheets.Request
	for _, r := range ns.NumberRules {
		reqs = append(reqs, validation(gridRange(ids[r.Sheet], r.StartRow, r.EndRow, r.StartCol, r.EndCol), &sheets.BooleanCondition{
			Type: "NUMBER_BETWEEN",
			Values: []*sheets.ConditionValue{
				{UserEnteredValue: fmt.Sprint(r.Lo)},
				{UserEnteredValue: fmt.Sprint(r.Hi)},
			},
		}))
	}
	for _, r := range ns.ListRules {
		reqs = append(reqs, validation(gridRange(ids[r.Sheet], r.StartRow, r.EndRow, r.StartCol, r.EndCol), &sheets.BooleanCondition{
			Type:   "ONE_OF_RANGE",
			Values: []*sheets.ConditionValue{{UserEnteredValue: "=" + r.SourceRange}},
		}))
	}
	if len(reqs) > 0 {
		_, err = w.sheets.Spreadsheets.BatchUpdate(created.SpreadsheetId, &sheets.BatchUpdateSpreadsheetRequest{Requests: reqs}).
			Context(ctx).
			Do()
		if err != nil {
			return "", upstream("add validation", err)
		}
	}
	w.log.Info("Created spreadsheet", "spreadsheet_id", created.SpreadsheetId, "title", ns.Title)
	return created.SpreadsheetId, nil
}

func gridRange(sheetID, startRow, endRow, startCol, endCol int64) *sheets.GridRange {
	return &sheets.GridRange{
		SheetId:          sheetID,
		StartRowIndex:    startRow,
		EndRowIndex:      endRow,
		StartColumnIndex: startCol,
		EndColumnIndex:   endCol,
		ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
	}
}

func validation(rng *sheets.GridRange, cond *sheets.BooleanCondition) *sheets.Request {
	return &sheets.Request{
		SetDataValidation: &sheets.SetDataValidationRequest{
			Range: rng,
			Rule: &sheets.DataValidationRule{
				Condition:    cond,
				Strict:       true,
				ShowCustomUi: true,
			},
		},
	}
}
