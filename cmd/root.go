package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/medcombo/internal/config"
	"github.com/KaramelBytes/medcombo/internal/dataset"
	"github.com/KaramelBytes/medcombo/internal/logging"
	"github.com/KaramelBytes/medcombo/internal/server"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X github.com/KaramelBytes/medcombo/cmd.version=...".
var version = "dev"

var (
	// Global flags (override config if set)
	cfgFile       string
	debug         bool
	flagDataPath  string
	flagLogFormat string

	// Loaded configuration; cfgErr holds the load failure when cfg is nil.
	cfg    *cfgpkg.Global
	cfgErr error
)

var rootCmd = &cobra.Command{
	Use:           "medcombo",
	Short:         "Explore readmission outcomes across pairs of diabetes medications",
	Long:          `medcombo loads a diabetic encounter extract and reports, for any two medication columns, how readmission outcomes distribute across their dosage combinations.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.medcombo/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDataPath, "data", "", "dataset path: .csv, .tsv or .xlsx (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text | json (overrides config)")
}

func loadConfig() {
	cfg, cfgErr = nil, nil
	f := rootCmd.PersistentFlags()
	logFormat, logLevel := "text", "info"

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal here; commands that need the dataset fail through requireConfig.
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfgErr = err
	} else {
		cfg = c
		// Apply CLI overrides if provided
		if f.Changed("data") && flagDataPath != "" {
			cfg.DataPath = flagDataPath
		}
		if f.Changed("log-format") && flagLogFormat != "" {
			cfg.LogFormat = flagLogFormat
		}
		logFormat, logLevel = cfg.LogFormat, cfg.LogLevel
	}
	if f.Changed("log-format") && flagLogFormat != "" {
		logFormat = flagLogFormat
	}

	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v; using info\n", err)
	}
	if debug {
		level = slog.LevelDebug
	}
	logging.Init(level, logFormat)
}

// requireConfig returns the load error for commands that cannot run on defaults.
func requireConfig() (*cfgpkg.Global, error) {
	if cfgErr != nil {
		return nil, fmt.Errorf("load config: %w", cfgErr)
	}
	if cfg == nil {
		return nil, errors.New("no configuration loaded")
	}
	return cfg, nil
}

// loadDataset reads the configured dataset once per command invocation.
func loadDataset() (*dataset.Dataset, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	if c.DataPath == "" {
		return nil, errors.New("no dataset configured: pass --data or run 'medcombo config set data_path <file>'")
	}
	opt, err := c.DatasetOptions()
	if err != nil {
		return nil, fmt.Errorf("dataset options: %w", err)
	}
	ds, err := dataset.LoadFile(c.DataPath, opt)
	if err != nil {
		return nil, err
	}
	logging.New("cli").Debug("dataset loaded", "path", c.DataPath, "rows", ds.Len(), "columns", len(ds.Columns()))
	return ds, nil
}

// selection builds the column gate from the loaded configuration.
func selection() (server.Selection, error) {
	c, err := requireConfig()
	if err != nil {
		return server.Selection{}, err
	}
	return server.Selection{Allowed: c.MedicationColumns, Outcome: c.OutcomeColumn}, nil
}
