package reconcile

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Range summarizes one numeric column. Zero when the column had no
// parseable values.
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// PointCount is the number of records of one point.
type PointCount struct {
	ID      string `json:"pointId"`
	Records int    `json:"records"`
}

// Stats describes an imported table. PerPoint is in point order.
type Stats struct {
	Records         int          `json:"records"`
	Points          int          `json:"points"`
	RecordsPerPoint float64      `json:"recordsPerPoint"`
	PerPoint        []PointCount `json:"perPoint,omitempty"`
	BlowCount       Range        `json:"blowCount"`
	SaturatedDepth  Range        `json:"saturatedDepth"`
}

// Summarize counts the rows carrying a point ID and describes the N and ds
// columns. Fields missing from m are left zero; unparseable cells are skipped.
func Summarize(t Table, m Mapping) Stats {
	var s Stats

	idCol := -1
	if h, ok := m[FieldPointID]; ok {
		idCol = t.column(h)
	}
	nCol, dsCol := -1, -1
	if h, ok := m[FieldBlowCount]; ok {
		nCol = t.column(h)
	}
	if h, ok := m[FieldSaturatedDepth]; ok {
		dsCol = t.column(h)
	}

	counts := make(map[string]int)
	var ns, dss []float64
	for r := range t.Rows {
		if idCol >= 0 {
			id := CleanCell(t.Cell(r, idCol))
			if id == "" {
				continue
			}
			counts[id]++
		}
		s.Records++
		if v, err := ParseNumber(t.Cell(r, nCol)); err == nil {
			ns = append(ns, v)
		}
		if v, err := ParseNumber(t.Cell(r, dsCol)); err == nil {
			dss = append(dss, v)
		}
	}

	s.Points = len(counts)
	if s.Points > 0 {
		s.RecordsPerPoint = float64(s.Records) / float64(s.Points)
		ids := make([]string, 0, len(counts))
		for id := range counts {
			ids = append(ids, id)
		}
		slices.SortFunc(ids, pointOrder(ids))
		for _, id := range ids {
			s.PerPoint = append(s.PerPoint, PointCount{ID: id, Records: counts[id]})
		}
	}
	s.BlowCount = describe(ns)
	s.SaturatedDepth = describe(dss)
	return s
}

func describe(xs []float64) Range {
	if len(xs) == 0 {
		return Range{}
	}
	return Range{
		Min:  floats.Min(xs),
		Max:  floats.Max(xs),
		Mean: stat.Mean(xs, nil),
	}
}
