package reconcile

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidNumber is wrapped by CellError.
var ErrInvalidNumber = errors.New("invalid number")

// Table is a decoded tabular file: a header row and the data rows.
// Rows may be shorter than Columns; missing cells read as empty.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Cell returns the trimmed value at row, col or "" when out of range.
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][col])
}

// column returns the first column whose header is exactly h.
func (t Table) column(h string) int {
	return slices.Index(t.Columns, h)
}

// CellError reports a numeric cell that could not be parsed.
// Line is 1-based with the header on line 1.
type CellError struct {
	Line   int
	Column string
	Value  string
}

func (e *CellError) Error() string {
	return fmt.Sprintf("line %d, column %q: invalid number %q", e.Line, e.Column, e.Value)
}

func (e *CellError) Unwrap() error {
	return ErrInvalidNumber
}

// LayerRow is one table row after column mapping.
type LayerRow struct {
	Line           int     `json:"line"`
	SaturatedDepth float64 `json:"ds"`
	BlowCount      float64 `json:"n"`
	Thickness      float64 `json:"di"`
}

// PointRows holds the rows of one point in table order.
type PointRows struct {
	ID   string     `json:"pointId"`
	Rows []LayerRow `json:"rows"`
}

// numberPattern matches plain decimals and scientific notation.
var numberPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// CleanCell trims whitespace, an Excel ="..." wrapper and surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}
	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// thousandsPattern matches comma-grouped integers such as 1,234 or 12,345.6.
var thousandsPattern = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d*)?$`)

// ParseNumber parses a numeric cell; empty cells are rejected. Commas are
// thousands separators when they group digits in threes, otherwise a single
// comma in a number without a point is a decimal comma (1,5 is 1.5). Any
// other comma makes the cell invalid.
func ParseNumber(s string) (float64, error) {
	s = CleanCell(s)
	switch {
	case !strings.Contains(s, ","):
	case thousandsPattern.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") == 1 && !strings.Contains(s, "."):
		s = strings.Replace(s, ",", ".", 1)
	default:
		return 0, ErrInvalidNumber
	}
	if !numberPattern.MatchString(s) {
		return 0, ErrInvalidNumber
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidNumber
	}
	return v, nil
}

// Group collects the rows of t into points using a complete mapping.
// Rows without a point ID are skipped. Points are ordered numerically when
// every ID is a number and lexically otherwise; rows keep table order.
func Group(t Table, m Mapping) ([]PointRows, error) {
	if missing := m.Missing(DefaultDictionary()); len(missing) > 0 {
		return nil, &IncompleteMappingError{Missing: missing}
	}

	cols := make(map[Field]int, 4)
	for _, f := range []Field{FieldPointID, FieldSaturatedDepth, FieldBlowCount, FieldThickness} {
		c := t.column(m[f])
		if c < 0 {
			return nil, fmt.Errorf("mapped column %q for %s not in table", m[f], f)
		}
		cols[f] = c
	}

	index := make(map[string]int)
	var points []PointRows

	for r := range t.Rows {
		id := CleanCell(t.Cell(r, cols[FieldPointID]))
		if id == "" {
			continue
		}

		row := LayerRow{Line: r + 2}
		for _, target := range []struct {
			field Field
			dst   *float64
		}{
			{FieldSaturatedDepth, &row.SaturatedDepth},
			{FieldBlowCount, &row.BlowCount},
			{FieldThickness, &row.Thickness},
		} {
			raw := t.Cell(r, cols[target.field])
			v, err := ParseNumber(raw)
			if err != nil {
				return nil, &CellError{Line: row.Line, Column: m[target.field], Value: raw}
			}
			*target.dst = v
		}

		i, ok := index[id]
		if !ok {
			i = len(points)
			index[id] = i
			points = append(points, PointRows{ID: id})
		}
		points[i].Rows = append(points[i].Rows, row)
	}

	sortPoints(points)
	return points, nil
}

func sortPoints(points []PointRows) {
	ids := make([]string, len(points))
	for i, p := range points {
		ids[i] = p.ID
	}
	cmp := pointOrder(ids)
	slices.SortStableFunc(points, func(a, b PointRows) int {
		return cmp(a.ID, b.ID)
	})
}

// pointOrder compares point IDs numerically when every one of ids is a
// plain number and lexically otherwise.
func pointOrder(ids []string) func(a, b string) int {
	numeric := make(map[string]float64, len(ids))
	for _, id := range ids {
		if !numberPattern.MatchString(id) {
			return strings.Compare
		}
		v, err := strconv.ParseFloat(id, 64)
		if err != nil {
			return strings.Compare
		}
		numeric[id] = v
	}
	return func(a, b string) int {
		x, y := numeric[a], numeric[b]
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return strings.Compare(a, b)
	}
}
