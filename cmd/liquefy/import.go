package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/liquefy/internal/core"
	"github.com/JonMunkholm/liquefy/internal/reconcile"
)

var (
	importSite     siteFlags
	importPoints   []string
	importChartDir string
	importPreview  bool
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Calculate every point of a CSV or XLSX table",
	Long: `Read a table of SPT layers, recognize its columns and calculate each
measurement point with the same site parameters.

The table needs a point id, saturated depth, measured N and layer thickness
column. Run "liquefy fields" to list the accepted header spellings.`,
	Example: `  liquefy import boreholes.csv --intensity 8 --depth 20 --dw 1.2
  liquefy import site.xlsx --point 3 --point 7 --chart-dir charts/`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()

		preview, err := app.service.Import(cmd.Context(), filepath.Base(name), f)
		if preview != nil {
			printPreview(cmd.ErrOrStderr(), preview)
		}
		var incomplete *reconcile.IncompleteMappingError
		if errors.As(err, &incomplete) {
			return fmt.Errorf("%w (run \"liquefy fields\" for accepted headers)", err)
		}
		if err != nil {
			return err
		}
		if importPreview {
			return app.service.DiscardImport(preview.ImportID)
		}

		defaults, _ := app.service.Defaults()
		importSite.apply(cmd, &defaults)
		params := core.SiteParams{
			Intensity:        defaults.Intensity,
			DepthCriterion:   defaults.DepthCriterion,
			GroundwaterDepth: defaults.GroundwaterDepth,
			Category:         importSite.category,
		}

		recs, err := app.service.CalculateImported(cmd.Context(), preview.ImportID, params, importPoints)
		if err != nil {
			return err
		}
		if err := printRecords(cmd, recs, importSite.asJSON); err != nil {
			return err
		}
		if importChartDir != "" {
			for _, rec := range recs {
				path := filepath.Join(importChartDir, chartFileName(rec.PointID))
				if err := writeChart(path, rec.Result); err != nil {
					return err
				}
			}
		}
		return app.service.DiscardImport(preview.ImportID)
	},
}

func init() {
	importSite.register(importCmd)
	importCmd.Flags().StringArrayVarP(&importPoints, "point", "p", nil, "only calculate this point id (repeatable)")
	importCmd.Flags().StringVar(&importChartDir, "chart-dir", "", "write one safety factor PNG per point into this directory")
	importCmd.Flags().BoolVar(&importPreview, "preview", false, "show the column mapping and statistics without calculating")
}

// printPreview summarizes the column mapping and statistics.
func printPreview(w io.Writer, p *core.ImportPreview) {
	fmt.Fprintf(w, "File: %s (%d records)\n", p.FileName, p.Stats.Records)
	for _, m := range p.Matches {
		fmt.Fprintf(w, "  %-28s <- %q (%s)\n", m.Field, m.Header, m.Kind)
	}
	for _, f := range p.Missing {
		fmt.Fprintf(w, "  %-28s <- MISSING\n", f)
	}
	if p.Stats.Points > 0 {
		fmt.Fprintf(w, "Points: %d (%.1f records each)\n", p.Stats.Points, p.Stats.RecordsPerPoint)
		for _, pc := range p.Stats.PerPoint {
			fmt.Fprintf(w, "  Point %s: %d records\n", pc.ID, pc.Records)
		}
		fmt.Fprintf(w, "N-value: min %.1f, max %.1f, mean %.2f\n",
			p.Stats.BlowCount.Min, p.Stats.BlowCount.Max, p.Stats.BlowCount.Mean)
	}
	fmt.Fprintln(w)
}

// chartFileName turns a point id into a safe file name.
func chartFileName(pointID string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, pointID)
	return name + ".png"
}
