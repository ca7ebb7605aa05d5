// Package report renders calculated results as text, CSV and charts.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/liquefy/internal/liquefaction"
	"github.com/JonMunkholm/liquefy/internal/storage"
)

// column is one fixed-width, centered column of the layer table.
type column struct {
	title string
	width int
	prec  int
	value func(liquefaction.LayerDetail) float64
}

var layerColumns = []column{
	{"Saturated Depth", 12, 1, func(d liquefaction.LayerDetail) float64 { return d.SaturatedDepth }},
	{"Measured N", 10, 1, func(d liquefaction.LayerDetail) float64 { return d.BlowCount }},
	{"N0", 10, 0, func(d liquefaction.LayerDetail) float64 { return d.ReferenceBlowCount }},
	{"Ncr", 10, 2, func(d liquefaction.LayerDetail) float64 { return d.CriticalBlowCount }},
	{"FS", 10, 2, func(d liquefaction.LayerDetail) float64 { return d.SafetyFactor }},
	{"Contribution", 12, 2, func(d liquefaction.LayerDetail) float64 { return d.Contribution }},
}

const ruleWidth = 65

// center pads s on both sides to width; odd padding goes to the right.
func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}

func formatValue(v float64, prec int) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// WriteLayerTable writes the per-layer table of res.
func WriteLayerTable(w io.Writer, res liquefaction.Result) error {
	var b strings.Builder
	for _, c := range layerColumns {
		b.WriteString(center(c.title, c.width))
	}
	b.WriteByte('\n')
	for _, d := range res.Layers {
		for _, c := range layerColumns {
			b.WriteString(center(formatValue(c.value(d), c.prec), c.width))
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSummary writes the index and grade lines that close a layer table.
func WriteSummary(w io.Writer, res liquefaction.Result) error {
	_, err := fmt.Fprintf(w, "%s\nTotal Liquefaction Index (ILE): %.2f\nLiquefaction Classification: %s\n",
		strings.Repeat("-", ruleWidth), res.Index, res.Grade)
	return err
}

// WriteReport writes the full text report of one point: site parameters,
// layer table, summary and the mitigation measure for cat.
func WriteReport(w io.Writer, res liquefaction.Result, cat liquefaction.Category) error {
	if _, err := fmt.Fprintf(w, "Point: %s\nIntensity: %d  Depth criterion: %d m  Groundwater depth dw: %.2f m\n\n",
		res.PointID, res.Intensity, res.DepthCriterion, res.GroundwaterDepth); err != nil {
		return err
	}
	if err := WriteLayerTable(w, res); err != nil {
		return err
	}
	if err := WriteSummary(w, res); err != nil {
		return err
	}

	measure, err := liquefaction.Measure(res.Grade, cat)
	switch {
	case errors.Is(err, liquefaction.ErrNoMeasure):
		measure = "No anti-liquefaction measures required."
	case err != nil:
		return err
	}
	_, err = fmt.Fprintf(w, "\nAnti-liquefaction measures (Category %s):\n%s\n", cat, measure)
	return err
}

var csvHeader = []string{
	"Point ID", "Source", "Category", "Intensity", "Depth Criterion", "Groundwater Depth",
	"Layers", "ILE", "Grade", "Calculated At",
}

// WriteCSV exports one row per record.
func WriteCSV(w io.Writer, records []storage.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, rec := range records {
		res := rec.Result
		row := []string{
			rec.PointID,
			rec.Source,
			string(rec.Category),
			strconv.Itoa(int(res.Intensity)),
			strconv.Itoa(int(res.DepthCriterion)),
			strconv.FormatFloat(res.GroundwaterDepth, 'f', -1, 64),
			strconv.Itoa(len(res.Layers)),
			strconv.FormatFloat(res.Index, 'f', 4, 64),
			string(res.Grade),
			rec.CalculatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
