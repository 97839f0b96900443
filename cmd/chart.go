package cmd

import (
	"bytes"
	"fmt"

	"github.com/KaramelBytes/medcombo/internal/chart"
	"github.com/KaramelBytes/medcombo/internal/combo"
	"github.com/KaramelBytes/medcombo/internal/utils"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
)

var (
	chartOutput string
	chartKind   string
)

var chartCmd = &cobra.Command{
	Use:   "chart <col1> [col2]",
	Short: "Render a usage histogram or a stacked readmission chart to PNG/SVG",
	Long: `Render a chart for one or two medication columns.

  --kind outcome (default) needs two columns and stacks Up/Down/No percentages per combination.
  --kind usage draws the value counts of the first column.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if chartOutput == "" {
			return fmt.Errorf("--output is required (.png or .svg)")
		}
		format, err := chart.FormatFromPath(chartOutput)
		if err != nil {
			return err
		}
		sel, err := selection()
		if err != nil {
			return err
		}
		ds, err := loadDataset()
		if err != nil {
			return err
		}

		var (
			p          *plot.Plot
			categories int
		)
		switch chartKind {
		case "usage":
			if !sel.Allows(args[0]) {
				return fmt.Errorf("%q is not a configured medication column", args[0])
			}
			u, err := combo.Usage(ds, args[0])
			if err != nil {
				return err
			}
			if p, err = chart.Usage(u); err != nil {
				return err
			}
			categories = len(u.Values)
		case "outcome", "":
			if len(args) != 2 {
				return fmt.Errorf("outcome chart needs two columns")
			}
			if err := sel.Validate(args[0], args[1]); err != nil {
				return err
			}
			agg, err := combo.Aggregate(ds, args[0], args[1])
			if err != nil {
				return err
			}
			if p, err = chart.Outcomes(agg); err != nil {
				return err
			}
			categories = len(agg.Combinations)
		default:
			return fmt.Errorf("unsupported --kind: %s (use outcome|usage)", chartKind)
		}

		var buf bytes.Buffer
		w, h := chart.Size(categories)
		if err := chart.Write(&buf, p, format, w, h); err != nil {
			return err
		}
		if err := utils.SafeWriteFile(chartOutput, buf.Bytes()); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s chart to %s\n", kindOrDefault(chartKind), chartOutput)
		return nil
	},
}

func kindOrDefault(k string) string {
	if k == "" {
		return "outcome"
	}
	return k
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVarP(&chartOutput, "output", "o", "", "output image path (.png or .svg)")
	chartCmd.Flags().StringVar(&chartKind, "kind", "outcome", "chart kind: outcome | usage")
}
