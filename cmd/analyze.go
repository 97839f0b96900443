package cmd

import (
	"bytes"
	"fmt"

	"github.com/KaramelBytes/medcombo/internal/combo"
	"github.com/KaramelBytes/medcombo/internal/report"
	"github.com/KaramelBytes/medcombo/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaFormat     string
	anaOutputPath string
	anaEncoding   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <col1> <col2>",
	Short: "Report readmission outcomes for every dosage combination of two medications",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		col1, col2 := args[0], args[1]
		sel, err := selection()
		if err != nil {
			return err
		}
		if err := sel.Validate(col1, col2); err != nil {
			return err
		}
		format, err := report.ParseFormat(anaFormat)
		if err != nil {
			return err
		}
		opt, err := cfg.ComboOptions()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("encoding") {
			if opt.Encoding, err = combo.ParseEncoding(anaEncoding); err != nil {
				return err
			}
		}

		ds, err := loadDataset()
		if err != nil {
			return err
		}
		res, err := combo.Compute(ds, col1, col2, opt)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := report.Write(&buf, res, format); err != nil {
			return err
		}
		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, buf.Bytes()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "markdown", "output format: markdown | table | json")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
	analyzeCmd.Flags().StringVar(&anaEncoding, "encoding", "", "correlation encoding: first-seen | sorted (overrides config)")
}
