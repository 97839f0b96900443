package cmd

import (
	"fmt"

	"github.com/KaramelBytes/medcombo/internal/combo"
	"github.com/KaramelBytes/medcombo/internal/report"
	"github.com/KaramelBytes/medcombo/internal/utils"
	"github.com/spf13/cobra"
)

var usageFormat string

var usageCmd = &cobra.Command{
	Use:   "usage <column>",
	Short: "Show how often each dosage value of a medication occurs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		col := args[0]
		sel, err := selection()
		if err != nil {
			return err
		}
		if !sel.Allows(col) {
			return fmt.Errorf("%q is not a configured medication column", col)
		}
		format, err := report.ParseFormat(usageFormat)
		if err != nil {
			return err
		}
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		u, err := combo.Usage(ds, col)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch format {
		case report.FormatJSON:
			b, err := utils.PrettyJSON(u)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		case report.FormatTable:
			fmt.Fprintln(out, report.UsageTable(u, report.ASCII))
		default:
			fmt.Fprintln(out, report.UsageTable(u, report.Markdown))
		}
		return nil
	},
}

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "List the medication columns available for selection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := selection()
		if err != nil {
			return err
		}
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		present := sel.Present(ds)
		if len(present) == 0 {
			fmt.Fprintln(out, "No configured medication columns found in dataset")
			return nil
		}
		for _, c := range present {
			u, err := combo.Usage(ds, c)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "- %s (non-missing %d, distinct %d)\n", c, u.Total(), len(u.Values))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(columnsCmd)
	usageCmd.Flags().StringVarP(&usageFormat, "format", "f", "markdown", "output format: markdown | table | json")
}
