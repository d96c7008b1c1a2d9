// Package tabular maps spreadsheet-style cell matrices into decks and games.
//
// A Matrix always carries its header in row 0. Headers are matched case-insensitively after
// trimming, so "Est. Pod Bracket" and " est. pod bracket" address the same column.
package tabular

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Matrix is a block of cells as returned by the Sheets values API.
type Matrix [][]any

// Filter selects rows whose cell in Column loosely equals Match.
type Filter struct {
	Column string
	Match  string
}

// RowWithNumber keeps the 1-based sheet row a data row came from.
type RowWithNumber struct {
	RowNumber int
	Row       []any
}

// NormalizeHeader trims and lower-cases a header cell.
func NormalizeHeader(h any) string {
	if h == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(CellString(h)))
}

// Headers normalizes a header row.
func Headers(row []any) []string {
	out := make([]string, len(row))
	for i, h := range row {
		out[i] = NormalizeHeader(h)
	}
	return out
}

// ColumnIndex returns the position of the named column in a header row, or -1.
func ColumnIndex(header []any, name string) int {
	return indexOf(Headers(header), NormalizeHeader(name))
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}

func cellAt(row []any, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

// CellString renders a cell as text. Whole numbers print without a fraction.
func CellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(t)
	}
}

// ToNumberOrNull coerces a cell into a number.
// nil and blank strings become nil, as does anything that does not parse or parses to NaN.
func ToNumberOrNull(v any) *float64 {
	var n float64
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case bool:
		if t {
			n = 1
		}
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		parsed, ok := parseNumber(s)
		if !ok {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	return &n
}

// parseNumber reads decimal text plus unsigned 0x, 0o and 0b integers. Infinity spellings,
// digit separators and hex floats do not count as numbers.
func parseNumber(s string) (float64, bool) {
	if strings.ContainsRune(s, '_') {
		return 0, false
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			u, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return 0, false
			}
			return float64(u), true
		}
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(lower, "x") {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func stringOrNull(v any) *string {
	if v == nil {
		return nil
	}
	s := CellString(v)
	return &s
}

// looseEqual compares a cell against a filter string the way a spreadsheet user expects:
// strings compare exactly, numeric cells compare by numeric value and empty cells match nothing.
// Booleans take the numeric path as 1 and 0, so true never equals "true".
func looseEqual(cell any, match string) bool {
	switch t := cell.(type) {
	case nil:
		return false
	case string:
		return t == match
	}
	n := ToNumberOrNull(cell)
	if n == nil {
		return CellString(cell) == match
	}
	s := strings.TrimSpace(match)
	if s == "" {
		return *n == 0
	}
	m, ok := parseNumber(s)
	return ok && m == *n
}

func isEmptyRow(row []any) bool {
	for _, c := range row {
		if c == nil {
			continue
		}
		if s, ok := c.(string); ok && s == "" {
			continue
		}
		return false
	}
	return true
}
