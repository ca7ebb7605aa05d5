package liquefaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasure_TableComplete(t *testing.T) {
	for _, c := range Categories {
		for _, g := range []Grade{GradeSlight, GradeModerate, GradeSevere} {
			text, err := Measure(g, c)
			require.NoError(t, err, "category %s grade %s", c, g)
			assert.NotEmpty(t, text)
		}
	}
}

func TestMeasure_Values(t *testing.T) {
	tests := []struct {
		grade    Grade
		category Category
		want     string
	}{
		{GradeSevere, CategoryB, "Completely eliminate liquefaction settlement"},
		{GradeSlight, CategoryC, "Treat foundation and superstructure, or no measures may be taken"},
		{GradeModerate, CategoryD, "No measures may be taken"},
		{GradeSevere, CategoryD, "Treat foundation and superstructure, or take other economical measures"},
	}
	for _, tt := range tests {
		got, err := Measure(tt.grade, tt.category)
		require.NoError(t, err)
		if got != tt.want {
			t.Errorf("Measure(%s, %s) = %q, want %q", tt.grade, tt.category, got, tt.want)
		}
	}
}

func TestMeasure_Errors(t *testing.T) {
	_, err := Measure(GradeNone, CategoryB)
	assert.ErrorIs(t, err, ErrNoMeasure)

	_, err = Measure(GradeSlight, Category("A"))
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestParseCategory(t *testing.T) {
	for in, want := range map[string]Category{
		"B":           CategoryB,
		"c":           CategoryC,
		" Category D": CategoryD,
	} {
		got, err := ParseCategory(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseCategory("E")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestParseGrade(t *testing.T) {
	g, ok := ParseGrade(" severe ")
	assert.True(t, ok)
	assert.Equal(t, GradeSevere, g)

	_, ok = ParseGrade("Extreme")
	assert.False(t, ok)
}
