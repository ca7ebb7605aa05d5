package liquefaction

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category is the seismic fortification category of a building.
type Category string

const (
	CategoryB Category = "B"
	CategoryC Category = "C"
	CategoryD Category = "D"
)

// Categories lists the supported fortification categories.
var Categories = []Category{CategoryB, CategoryC, CategoryD}

// ParseCategory accepts "B", "c", "Category D" and similar spellings.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(strings.ToLower(s), "category"))
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

//go:embed measures.yaml
var measuresYAML []byte

// measures is decoded once from measures.yaml: category -> grade -> text.
var measures = mustLoadMeasures(measuresYAML)

func mustLoadMeasures(data []byte) map[Category]map[Grade]string {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		panic(fmt.Sprintf("liquefaction: decode measures: %v", err))
	}

	table := make(map[Category]map[Grade]string, len(raw))
	for cat, byGrade := range raw {
		row := make(map[Grade]string, len(byGrade))
		for label, text := range byGrade {
			g, ok := ParseGrade(label)
			if !ok || g == GradeNone {
				panic(fmt.Sprintf("liquefaction: measures: unexpected grade %q", label))
			}
			row[g] = text
		}
		table[Category(cat)] = row
	}
	return table
}

// Measure returns the recommended mitigation for a grade and category.
func Measure(g Grade, c Category) (string, error) {
	row, ok := measures[c]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	text, ok := row[g]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrNoMeasure, g)
	}
	return text, nil
}
