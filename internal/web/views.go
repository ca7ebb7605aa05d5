package web

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/liquefy/internal/core"
	"github.com/JonMunkholm/liquefy/internal/liquefaction"
	"github.com/JonMunkholm/liquefy/internal/reconcile"
	"github.com/JonMunkholm/liquefy/internal/storage"
)

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2937}
table{border-collapse:collapse;margin:1rem 0}th,td{border:1px solid #d1d5db;padding:.35rem .7rem;text-align:center}
th{background:#f3f4f6}.grade-Severe{color:#b91c1c}.grade-Moderate{color:#c2410c}.grade-Slight{color:#a16207}
.error{border:1px solid #fca5a5;background:#fef2f2;padding:1rem}code{background:#f3f4f6;padding:0 .2rem}`

// esc is templ's HTML escaper.
func esc(s string) string { return templ.EscapeString(s) }

func num(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// layout wraps body in the common page chrome.
func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s</title><style>%s</style></head><body>`,
			esc(title), pageStyle); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

func resultLink(pointID string) string {
	return "/results/" + url.PathEscape(pointID)
}

type dashboardData struct {
	Results []storage.Record
	Imports []core.ImportPreview
	Fields  reconcile.Dictionary
	Point   liquefaction.SitePoint
}

func dashboardPage(d dashboardData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &pageWriter{w: w}
		b.printf(`<h1>SPT Liquefaction Index</h1>`)
		b.printf(`<p>Default site: intensity %d, depth criterion %d m, groundwater depth %s m.</p>`,
			d.Point.Intensity, d.Point.DepthCriterion, num(d.Point.GroundwaterDepth, 2))

		b.printf(`<h2>Results</h2>`)
		if len(d.Results) == 0 {
			b.printf(`<p>No results yet. POST a point to <code>/api/calculate</code> or upload a table to <code>/api/import</code>.</p>`)
		} else {
			b.printf(`<table><tr><th>Point</th><th>Source</th><th>ILE</th><th>Grade</th><th>Calculated</th></tr>`)
			for _, rec := range d.Results {
				b.printf(`<tr><td><a href="%s">%s</a></td><td>%s</td><td>%s</td><td class="grade-%s">%s</td><td>%s</td></tr>`,
					esc(resultLink(rec.PointID)), esc(rec.PointID), esc(rec.Source),
					num(rec.Result.Index, 2), esc(string(rec.Result.Grade)), esc(string(rec.Result.Grade)),
					rec.CalculatedAt.Format("2006-01-02 15:04:05"))
			}
			b.printf(`</table><p><a href="/api/results/export">Export CSV</a></p>`)
		}

		if len(d.Imports) > 0 {
			b.printf(`<h2>Pending imports</h2><table><tr><th>Import</th><th>File</th><th>Points</th><th>Records</th></tr>`)
			for _, p := range d.Imports {
				b.printf(`<tr><td><code>%s</code></td><td>%s</td><td>%d</td><td>%d</td></tr>`,
					esc(p.ImportID), esc(p.FileName), len(p.PointIDs), p.Stats.Records)
			}
			b.printf(`</table>`)
		}

		b.printf(`<h2>Accepted column headers</h2><table><tr><th>Field</th><th>Aliases</th></tr>`)
		for _, e := range d.Fields {
			b.printf(`<tr><td>%s</td><td>`, esc(string(e.Field)))
			for i, a := range e.Aliases {
				if i > 0 {
					b.printf(`, `)
				}
				b.printf(`%s`, esc(a))
			}
			b.printf(`</td></tr>`)
		}
		b.printf(`</table>`)
		return b.err
	})
	return layout("SPT Liquefaction Index", body)
}

type resultData struct {
	Record   storage.Record
	Category liquefaction.Category
	Measure  string
}

func resultPage(d resultData) templ.Component {
	res := d.Record.Result
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &pageWriter{w: w}
		b.printf(`<p><a href="/">&larr; All results</a></p><h1>%s</h1>`, esc(res.PointID))
		b.printf(`<p>Intensity %d, depth criterion %d m, groundwater depth %s m.</p>`,
			res.Intensity, res.DepthCriterion, num(res.GroundwaterDepth, 2))
		b.printf(`<p><strong>ILE %s</strong>: <span class="grade-%s">%s</span></p>`,
			num(res.Index, 2), esc(string(res.Grade)), esc(string(res.Grade)))

		b.printf(`<table><tr><th>Saturated Depth</th><th>Measured N</th><th>N0</th><th>Ncr</th><th>FS</th><th>Weight</th><th>Contribution</th></tr>`)
		for _, l := range res.Layers {
			b.printf(`<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				num(l.SaturatedDepth, 1), num(l.BlowCount, 1), num(l.ReferenceBlowCount, 0),
				num(l.CriticalBlowCount, 2), num(l.SafetyFactor, 2), num(l.Weight, 0), num(l.Contribution, 2))
		}
		b.printf(`</table>`)

		b.printf(`<h2>Anti-liquefaction measures (Category %s)</h2><p>%s</p>`, esc(string(d.Category)), esc(d.Measure))
		if len(res.Layers) > 0 {
			b.printf(`<img alt="Safety factor profile" src="%s/chart.png">`, esc(resultLink(res.PointID)))
		}
		return b.err
	})
	return layout(res.PointID, body)
}

func errorPage(status int, msg core.UserMessage) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &pageWriter{w: w}
		b.printf(`<div class="error"><h1>%d</h1><p>%s</p>`, status, esc(msg.Message))
		if msg.Action != "" {
			b.printf(`<p>%s</p>`, esc(msg.Action))
		}
		b.printf(`<p>Code <code>%s</code></p></div><p><a href="/">Back</a></p>`, esc(msg.Code))
		return b.err
	})
	return layout("Error", body)
}

// pageWriter keeps the first write error so views can print unconditionally.
type pageWriter struct {
	w   io.Writer
	err error
}

func (p *pageWriter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
