package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/JonMunkholm/liquefy/internal/liquefaction"
)

// WriteChartHTML writes the safety factor profile of res as a
// self-contained echarts page.
func WriteChartHTML(w io.Writer, res liquefaction.Result) error {
	pts := profile(res)
	if len(pts) == 0 {
		return ErrNoLayers
	}

	data := make([]opts.LineData, 0, len(pts))
	for _, pt := range pts {
		data = append(data, opts.LineData{Value: []interface{}{pt.X, pt.Y}})
	}

	title := chartTitle
	if res.PointID != "" {
		title = res.PointID
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: chartTitle,
			Width:     "900px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("ILE %.2f, %s", res.Index, res.Grade),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:         chartXLabel,
			Type:         "value",
			NameLocation: "middle",
			NameGap:      30,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:         chartYLabel,
			Type:         "value",
			NameLocation: "middle",
			NameGap:      40,
			Inverse:      opts.Bool(true),
		}),
	)

	line.AddSeries("FS", data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true), SymbolSize: 8}),
		charts.WithMarkLineNameXAxisItemOpts(opts.MarkLineNameXAxisItem{Name: threshold, XAxis: 1}),
		charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
			Symbol:    []string{"none", "none"},
			LineStyle: &opts.LineStyle{Color: "red", Type: "dashed"},
		}),
	)

	return line.Render(w)
}
