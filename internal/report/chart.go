package report

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/JonMunkholm/liquefy/internal/liquefaction"
)

// ErrNoLayers is returned when a result has nothing to plot.
var ErrNoLayers = errors.New("result has no plottable layers")

const (
	chartTitle  = "Distribution of Safety Factors for Each Soil Layer"
	chartXLabel = "Safety Factor FS"
	chartYLabel = "Saturated Soil Depth (m)"
	threshold   = "Liquefaction threshold (FS=1)"
)

var (
	profileColor   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	thresholdColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// profile returns the (FS, ds) points of res, skipping layers whose
// safety factor is not finite.
func profile(res liquefaction.Result) plotter.XYs {
	pts := make(plotter.XYs, 0, len(res.Layers))
	for _, d := range res.Layers {
		if math.IsInf(d.SafetyFactor, 0) || math.IsNaN(d.SafetyFactor) {
			continue
		}
		pts = append(pts, plotter.XY{X: d.SafetyFactor, Y: d.SaturatedDepth})
	}
	return pts
}

// WriteChartPNG draws the safety factor profile of res as a PNG of the
// given size in inches. Depth grows downwards.
func WriteChartPNG(w io.Writer, res liquefaction.Result, width, height float64) error {
	pts := profile(res)
	if len(pts) == 0 {
		return ErrNoLayers
	}

	p := plot.New()
	p.Title.Text = chartTitle
	if res.PointID != "" {
		p.Title.Text += " - " + res.PointID
	}
	p.X.Label.Text = chartXLabel
	p.Y.Label.Text = chartYLabel
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.Add(plotter.NewGrid())

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("profile line: %w", err)
	}
	line.Color = profileColor
	line.Width = vg.Points(1.5)
	points.Color = profileColor
	points.Shape = draw.CircleGlyph{}
	points.Radius = vg.Points(3)

	minDepth, maxDepth := pts[0].Y, pts[0].Y
	for _, pt := range pts[1:] {
		minDepth = math.Min(minDepth, pt.Y)
		maxDepth = math.Max(maxDepth, pt.Y)
	}
	if minDepth == maxDepth {
		minDepth, maxDepth = minDepth-0.5, maxDepth+0.5
	}
	limit, err := plotter.NewLine(plotter.XYs{{X: 1, Y: minDepth}, {X: 1, Y: maxDepth}})
	if err != nil {
		return fmt.Errorf("threshold line: %w", err)
	}
	limit.Color = thresholdColor
	limit.Width = vg.Points(1)
	limit.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}

	p.Add(line, points, limit)
	p.Legend.Add("FS", line, points)
	p.Legend.Add(threshold, limit)
	p.Legend.Top = true

	wt, err := p.WriterTo(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}
