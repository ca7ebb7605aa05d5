package reconcile

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleMapping = Mapping{
	FieldPointID:        "Point",
	FieldSaturatedDepth: "ds",
	FieldBlowCount:      "N",
	FieldThickness:      "di",
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12", 12, true},
		{" 1.5 ", 1.5, true},
		{`="3.0"`, 3, true},
		{`"4"`, 4, true},
		{"1,234.5", 1234.5, true},
		{"12,345", 12345, true},
		{"1,5", 1.5, true},
		{"1,50", 1.5, true},
		{"-0,75", -0.75, true},
		{"-2", -2, true},
		{"1e2", 100, true},
		{"", 0, false},
		{"abc", 0, false},
		{"１２", 0, false},
		{"1.2.3", 0, false},
		{"1,2,3", 0, false},
		{"1,5.0", 0, false},
		{"12,34.5", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseNumber(tt.in)
		if tt.ok {
			if err != nil || got != tt.want {
				t.Errorf("ParseNumber(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidNumber) {
			t.Errorf("ParseNumber(%q) error = %v, want ErrInvalidNumber", tt.in, err)
		}
	}
}

func TestGroup_NumericOrder(t *testing.T) {
	table := Table{
		Columns: []string{"Point", "ds", "N", "di"},
		Rows: [][]string{
			{"10", "1.5", "12", "3"},
			{"2", "1.5", "8", "2"},
			{"10", "4.5", "14", "3"},
			{"", "", "", ""},
			{"2", "6", "11", "1"},
			{"", "9", "9", "9"},
		},
	}

	got, err := Group(table, sampleMapping)
	require.NoError(t, err)

	want := []PointRows{
		{ID: "2", Rows: []LayerRow{
			{Line: 3, SaturatedDepth: 1.5, BlowCount: 8, Thickness: 2},
			{Line: 6, SaturatedDepth: 6, BlowCount: 11, Thickness: 1},
		}},
		{ID: "10", Rows: []LayerRow{
			{Line: 2, SaturatedDepth: 1.5, BlowCount: 12, Thickness: 3},
			{Line: 4, SaturatedDepth: 4.5, BlowCount: 14, Thickness: 3},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Group mismatch (-want +got):\n%s", diff)
	}
}

func TestGroup_LexicalOrder(t *testing.T) {
	table := Table{
		Columns: []string{"Point", "ds", "N", "di"},
		Rows: [][]string{
			{"ZK2", "1", "1", "1"},
			{"ZK10", "1", "1", "1"},
			{"1", "1", "1", "1"},
		},
	}

	got, err := Group(table, sampleMapping)
	require.NoError(t, err)

	ids := make([]string, len(got))
	for i, p := range got {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"1", "ZK10", "ZK2"}, ids)
}

func TestGroup_DecimalComma(t *testing.T) {
	table := Table{
		Columns: []string{"Point", "ds", "N", "di"},
		Rows:    [][]string{{"1", "1,5", "12", "3,0"}},
	}

	points, err := Group(table, sampleMapping)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, []LayerRow{{Line: 2, SaturatedDepth: 1.5, BlowCount: 12, Thickness: 3}}, points[0].Rows)
}

func TestGroup_NonNumericIDsSortLexically(t *testing.T) {
	table := Table{
		Columns: []string{"Point", "ds", "N", "di"},
		Rows: [][]string{
			{"NaN", "1.5", "12", "3"},
			{"9", "1.5", "12", "3"},
			{"10", "1.5", "12", "3"},
			{"Inf", "1.5", "12", "3"},
		},
	}

	points, err := Group(table, sampleMapping)
	require.NoError(t, err)
	var ids []string
	for _, p := range points {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"10", "9", "Inf", "NaN"}, ids)
}

func TestGroup_InvalidCell(t *testing.T) {
	table := Table{
		Columns: []string{"Point", "ds", "N", "di"},
		Rows: [][]string{
			{"1", "1.5", "12", "3"},
			{"1", "4.5", "n/a", "3"},
		},
	}

	_, err := Group(table, sampleMapping)
	require.ErrorIs(t, err, ErrInvalidNumber)

	var ce *CellError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 3, ce.Line)
	assert.Equal(t, "N", ce.Column)
	assert.Equal(t, "n/a", ce.Value)
}

func TestGroup_ShortRowIsInvalid(t *testing.T) {
	table := Table{
		Columns: []string{"Point", "ds", "N", "di"},
		Rows:    [][]string{{"1", "1.5", "12"}},
	}

	_, err := Group(table, sampleMapping)
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestGroup_DoesNotMutateTable(t *testing.T) {
	table := Table{
		Columns: []string{"Point", "ds", "N", "di"},
		Rows:    [][]string{{" 2 ", `="1.5"`, "12", "3"}},
	}
	before := cmp.Diff(Table{}, table)

	_, err := Group(table, sampleMapping)
	require.NoError(t, err)
	assert.Equal(t, before, cmp.Diff(Table{}, table))
}

func TestSummarize(t *testing.T) {
	table := Table{
		Columns: []string{"Point", "ds", "N", "di"},
		Rows: [][]string{
			{"1", "1.5", "12", "3"},
			{"1", "4.5", "14", "3"},
			{"2", "2.0", "10", "3"},
			{"", "9", "99", "9"},
		},
	}

	s := Summarize(table, sampleMapping)
	assert.Equal(t, 3, s.Records)
	assert.Equal(t, 2, s.Points)
	assert.InDelta(t, 1.5, s.RecordsPerPoint, 1e-9)
	assert.Equal(t, []PointCount{{ID: "1", Records: 2}, {ID: "2", Records: 1}}, s.PerPoint)
	assert.Equal(t, 10.0, s.BlowCount.Min)
	assert.Equal(t, 14.0, s.BlowCount.Max)
	assert.InDelta(t, 12.0, s.BlowCount.Mean, 1e-9)
	assert.Equal(t, 1.5, s.SaturatedDepth.Min)
	assert.Equal(t, 4.5, s.SaturatedDepth.Max)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(Table{Columns: []string{"Point"}}, Mapping{FieldPointID: "Point"})
	assert.Zero(t, s.Records)
	assert.Zero(t, s.RecordsPerPoint)
	assert.Nil(t, s.PerPoint)
	assert.Equal(t, Range{}, s.BlowCount)
}
