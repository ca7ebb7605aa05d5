package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/liquefy/internal/core"
	"github.com/JonMunkholm/liquefy/internal/liquefaction"
	"github.com/JonMunkholm/liquefy/internal/reconcile"
	"github.com/JonMunkholm/liquefy/internal/report"
	"github.com/JonMunkholm/liquefy/internal/storage"
)

// siteFlags are the site parameters shared by calc and import.
type siteFlags struct {
	intensity int
	depth     int
	dw        float64
	category  string
	asJSON    bool
}

func (f *siteFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.intensity, "intensity", 0, "fortification intensity (7, 8 or 9); defaults to CALC_DEFAULT_INTENSITY")
	cmd.Flags().IntVar(&f.depth, "depth", 0, "discrimination depth in m (15 or 20); defaults to CALC_DEFAULT_DEPTH_CRITERION")
	cmd.Flags().Float64Var(&f.dw, "dw", 0, "groundwater depth dw in m; defaults to CALC_DEFAULT_GROUNDWATER_DEPTH")
	cmd.Flags().StringVar(&f.category, "category", "", "fortification category for measures (B, C or D)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print results as JSON")
}

// apply overrides p's site parameters with the flags that were set.
func (f *siteFlags) apply(cmd *cobra.Command, p *liquefaction.SitePoint) {
	if cmd.Flags().Changed("intensity") {
		p.Intensity = liquefaction.Intensity(f.intensity)
	}
	if cmd.Flags().Changed("depth") {
		p.DepthCriterion = liquefaction.DepthCriterion(f.depth)
	}
	if cmd.Flags().Changed("dw") {
		p.GroundwaterDepth = f.dw
	}
}

var (
	calcSite   siteFlags
	calcLayers []string
	calcInput  string
	calcID     string
	calcChart  string
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Calculate the liquefaction index of one point",
	Long: `Calculate the liquefaction index of one point.

Layers are given as repeated --layer ds,N,di flags or read from a JSON
point file with --input. Without either, the built-in five-layer example
point is used.`,
	Example: `  liquefy calc --intensity 8 --dw 1.5 --layer 2,10,2 --layer 4,14,2
  liquefy calc --input point.json --category C --chart point.png`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, cat := app.service.Defaults()
		if calcInput != "" {
			data, err := os.ReadFile(calcInput)
			if err != nil {
				return err
			}
			p = liquefaction.SitePoint{}
			if err := json.Unmarshal(data, &p); err != nil {
				return fmt.Errorf("%w: %s: %v", liquefaction.ErrInvalidInput, calcInput, err)
			}
		}
		if len(calcLayers) > 0 {
			layers, err := parseLayers(calcLayers)
			if err != nil {
				return err
			}
			p.Layers = layers
		}
		if calcID != "" {
			p.ID = calcID
		}
		calcSite.apply(cmd, &p)
		if calcSite.category != "" {
			cat = liquefaction.Category(calcSite.category)
		}

		rec, err := app.service.Calculate(cmd.Context(), core.CalculateRequest{Point: p, Category: string(cat)})
		if err != nil {
			return err
		}
		if err := printRecords(cmd, []storage.Record{*rec}, calcSite.asJSON); err != nil {
			return err
		}
		if calcChart != "" {
			return writeChart(calcChart, rec.Result)
		}
		return nil
	},
}

func init() {
	calcSite.register(calcCmd)
	calcCmd.Flags().StringArrayVarP(&calcLayers, "layer", "l", nil, "layer as ds,N,di (repeatable)")
	calcCmd.Flags().StringVarP(&calcInput, "input", "i", "", "JSON point file")
	calcCmd.Flags().StringVar(&calcID, "id", "", "point id")
	calcCmd.Flags().StringVar(&calcChart, "chart", "", "write the safety factor profile to this PNG file")
}

// parseLayers reads "ds,N,di" triples. Semicolons and spaces also separate.
func parseLayers(specs []string) ([]liquefaction.Layer, error) {
	layers := make([]liquefaction.Layer, 0, len(specs))
	for i, spec := range specs {
		parts := strings.FieldsFunc(spec, func(r rune) bool {
			return r == ',' || r == ';' || r == ' '
		})
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: layer %d %q: want ds,N,di", liquefaction.ErrInvalidInput, i+1, spec)
		}
		var vals [3]float64
		for j, part := range parts {
			v, err := reconcile.ParseNumber(part)
			if err != nil {
				return nil, fmt.Errorf("layer %d: %w", i+1, err)
			}
			vals[j] = v
		}
		layers = append(layers, liquefaction.Layer{SaturatedDepth: vals[0], BlowCount: vals[1], Thickness: vals[2]})
	}
	return layers, nil
}

// printRecords writes a text report per record, or one JSON array.
func printRecords(cmd *cobra.Command, recs []storage.Record, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}
	for i, rec := range recs {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := report.WriteReport(out, rec.Result, rec.Category); err != nil {
			return err
		}
	}
	return nil
}

func writeChart(path string, res liquefaction.Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteChartPNG(f, res, 8, 6); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	app.logger.Info("chart written", "point_id", res.PointID, "file", path)
	return nil
}
