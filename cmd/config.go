package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/medcombo/internal/combo"
	cfgpkg "github.com/KaramelBytes/medcombo/internal/config"
	"github.com/KaramelBytes/medcombo/internal/dataset"
	"github.com/KaramelBytes/medcombo/internal/logging"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set medcombo configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "data_path: %s\n", cfg.DataPath)
		fmt.Fprintf(out, "outcome_column: %s\n", cfg.OutcomeColumn)
		fmt.Fprintf(out, "outcome_codes: %s\n", strings.Join(cfg.OutcomeCodes, ", "))
		fmt.Fprintf(out, "medication_columns: %s\n", strings.Join(cfg.MedicationColumns, ", "))
		fmt.Fprintf(out, "missing_markers: %q\n", cfg.MissingMarkers)
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		if cfg.SheetName != "" {
			fmt.Fprintf(out, "sheet_name: %s\n", cfg.SheetName)
		}
		fmt.Fprintf(out, "sheet_index: %d\n", cfg.SheetIndex)
		fmt.Fprintf(out, "encoding: %s\n", cfg.Encoding)
		fmt.Fprintf(out, "port: %d\n", cfg.Port)
		fmt.Fprintf(out, "cache_size: %d\n", cfg.CacheSize)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long: `Set a config value and save to disk.

List-valued keys (outcome_codes, medication_columns, missing_markers) take a comma-separated value.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "data_path":
			cfg.DataPath = val
		case "outcome_column":
			cfg.OutcomeColumn = val
		case "outcome_codes":
			codes := splitList(val)
			if _, err := dataset.ParseOutcomeMapping(codes); err != nil {
				return err
			}
			cfg.OutcomeCodes = codes
		case "medication_columns":
			cols := splitList(val)
			if len(cols) < 2 {
				return fmt.Errorf("medication_columns needs at least two columns")
			}
			cfg.MedicationColumns = cols
		case "missing_markers":
			cfg.MissingMarkers = strings.Split(val, ",")
		case "delimiter":
			if _, err := cfgpkg.ParseDelimiter(val); err != nil {
				return err
			}
			cfg.Delimiter = val
		case "sheet_name":
			cfg.SheetName = val
		case "sheet_index":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid sheet_index: %v (1-based)", val)
			}
			cfg.SheetIndex = i
		case "encoding":
			enc, err := combo.ParseEncoding(val)
			if err != nil {
				return err
			}
			cfg.Encoding = enc.String()
		case "port":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 || i > 65535 {
				return fmt.Errorf("invalid port: %v", val)
			}
			cfg.Port = i
		case "cache_size":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for cache_size: %v", val)
			}
			cfg.CacheSize = i
		case "log_level":
			if _, err := logging.ParseLevel(val); err != nil {
				return err
			}
			cfg.LogLevel = val
		case "log_format":
			switch val {
			case "text", "json":
				cfg.LogFormat = val
			default:
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// splitList splits a comma-separated value, trimming blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
