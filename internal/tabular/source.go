package tabular

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// Source is a spreadsheet the data managers read and write. Row numbers are 1-based sheet
// rows, so row 1 is the header.
type Source interface {
	Read(ctx context.Context, rng string) (Matrix, error)
	Append(ctx context.Context, sheet string, row []any) error
	UpdateRow(ctx context.Context, sheet string, rowNumber int, row []any) error
	DeleteRows(ctx context.Context, sheet string, rowNumbers []int) error
}

// SplitRange splits an A1 range such as "Games!A1:H" into the sheet name and the number of
// columns it spans. Width is 0 when the range does not bound the columns.
func SplitRange(rng string) (sheet string, width int) {
	sheet, cells, ok := strings.Cut(rng, "!")
	if !ok {
		return rng, 0
	}
	sheet = strings.Trim(sheet, "'")
	_, end, ok := strings.Cut(cells, ":")
	if !ok {
		return sheet, 0
	}
	return sheet, columnNumber(end)
}

func columnNumber(ref string) int {
	n := 0
	for _, r := range strings.ToUpper(ref) {
		if !unicode.IsLetter(r) {
			break
		}
		n = n*26 + int(r-'A'+1)
	}
	return n
}

// Memory is a mutex-guarded in-process Source.
type Memory struct {
	mu     sync.RWMutex
	sheets map[string]Matrix
}

// NewMemory returns a Memory seeded with deep copies of sheets.
func NewMemory(sheets map[string]Matrix) *Memory {
	m := &Memory{sheets: make(map[string]Matrix, len(sheets))}
	for name, data := range sheets {
		m.sheets[name] = copyMatrix(data, 0)
	}
	return m
}

func copyMatrix(src Matrix, width int) Matrix {
	out := make(Matrix, 0, len(src))
	for _, row := range src {
		n := len(row)
		if width > 0 && n > width {
			n = width
		}
		cp := make([]any, n)
		copy(cp, row[:n])
		out = append(out, cp)
	}
	return out
}

func (m *Memory) Read(ctx context.Context, rng string) (Matrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sheet, width := SplitRange(rng)
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("unable to parse range: %s", rng)
	}
	return copyMatrix(data, width), nil
}

func (m *Memory) Append(ctx context.Context, sheet string, row []any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.sheets[sheet]
	if !ok {
		return fmt.Errorf("sheet %q not found", sheet)
	}
	cp := make([]any, len(row))
	copy(cp, row)
	m.sheets[sheet] = append(data, cp)
	return nil
}

func (m *Memory) UpdateRow(ctx context.Context, sheet string, rowNumber int, row []any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.sheets[sheet]
	if !ok {
		return fmt.Errorf("sheet %q not found", sheet)
	}
	if rowNumber < 1 {
		return fmt.Errorf("invalid row %d", rowNumber)
	}
	for len(data) < rowNumber {
		data = append(data, []any{})
	}
	cp := make([]any, len(row))
	copy(cp, row)
	data[rowNumber-1] = cp
	m.sheets[sheet] = data
	return nil
}

func (m *Memory) DeleteRows(ctx context.Context, sheet string, rowNumbers []int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.sheets[sheet]
	if !ok {
		return fmt.Errorf("sheet %q not found", sheet)
	}
	rows := append([]int(nil), rowNumbers...)
	sort.Sort(sort.Reverse(sort.IntSlice(rows)))
	for _, r := range rows {
		if r < 1 || r > len(data) {
			return fmt.Errorf("row %d out of range", r)
		}
	}
	last := 0
	for _, r := range rows {
		if r == last {
			continue
		}
		last = r
		data = append(data[:r-1], data[r:]...)
	}
	m.sheets[sheet] = data
	return nil
}
