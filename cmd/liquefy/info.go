package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/liquefy/internal/liquefaction"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the import fields and their accepted column headers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "FIELD\tACCEPTED HEADERS")
		for _, e := range app.service.Fields() {
			fmt.Fprintf(tw, "%s\t%s\n", e.Field, strings.Join(e.Aliases, ", "))
		}
		return tw.Flush()
	},
}

var measuresCategory string

var measuresCmd = &cobra.Command{
	Use:   "measures [GRADE]",
	Short: "Show anti-liquefaction measures by grade and category",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		grades := liquefaction.Grades[1:]
		if len(args) == 1 {
			g, ok := liquefaction.ParseGrade(args[0])
			if !ok {
				return fmt.Errorf("%w: unknown grade %q", liquefaction.ErrInvalidInput, args[0])
			}
			grades = []liquefaction.Grade{g}
		}
		cats := liquefaction.Categories
		if measuresCategory != "" {
			c, err := liquefaction.ParseCategory(measuresCategory)
			if err != nil {
				return err
			}
			cats = []liquefaction.Category{c}
		}

		out := cmd.OutOrStdout()
		for _, c := range cats {
			fmt.Fprintf(out, "Category %s\n", c)
			for _, g := range grades {
				text, err := liquefaction.Measure(g, c)
				if errors.Is(err, liquefaction.ErrNoMeasure) {
					text = "No anti-liquefaction measures required."
				} else if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %-9s %s\n", g+":", text)
			}
		}
		return nil
	},
}

func init() {
	measuresCmd.Flags().StringVar(&measuresCategory, "category", "", "only this category (B, C or D)")
}
