package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/medcombo/internal/combo"
	"github.com/KaramelBytes/medcombo/internal/dataset"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultMedicationColumns are the selectable dosage columns of the diabetic readmission extract.
var DefaultMedicationColumns = []string{
	"metformin", "glipizide", "glyburide", "insulin", "repaglinide",
	"nateglinide", "chlorpropamide", "glimepiride", "acetohexamide", "tolbutamide",
}

// Global configuration structure.
type Global struct {
	DataPath          string   `mapstructure:"data_path" yaml:"data_path"`
	OutcomeColumn     string   `mapstructure:"outcome_column" yaml:"outcome_column"`
	OutcomeCodes      []string `mapstructure:"outcome_codes" yaml:"outcome_codes"`
	MedicationColumns []string `mapstructure:"medication_columns" yaml:"medication_columns"`
	MissingMarkers    []string `mapstructure:"missing_markers" yaml:"missing_markers"`
	Delimiter         string   `mapstructure:"delimiter" yaml:"delimiter"`
	SheetName         string   `mapstructure:"sheet_name" yaml:"sheet_name"`
	SheetIndex        int      `mapstructure:"sheet_index" yaml:"sheet_index"`
	Encoding          string   `mapstructure:"encoding" yaml:"encoding"`

	// HTTP dashboard
	Port      int `mapstructure:"port" yaml:"port"`
	CacheSize int `mapstructure:"cache_size" yaml:"cache_size"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".medcombo"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.medcombo/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults; command flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("MEDCOMBO")
	v.AutomaticEnv()

	v.SetDefault("data_path", "")
	v.SetDefault("outcome_column", "readmitted")
	v.SetDefault("outcome_codes", []string{">30=Up", "<30=Down", "NO=No"})
	v.SetDefault("medication_columns", DefaultMedicationColumns)
	v.SetDefault("missing_markers", dataset.DefaultMissingMarkers())
	v.SetDefault("delimiter", "")
	v.SetDefault("sheet_name", "")
	v.SetDefault("sheet_index", 1)
	v.SetDefault("encoding", "first-seen")
	v.SetDefault("port", 8054)
	v.SetDefault("cache_size", 64)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// DatasetOptions converts the loader-related keys to dataset.Options.
func (c *Global) DatasetOptions() (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	opt.OutcomeColumn = c.OutcomeColumn
	mapping, err := dataset.ParseOutcomeMapping(c.OutcomeCodes)
	if err != nil {
		return opt, err
	}
	opt.OutcomeMapping = mapping
	if c.MissingMarkers != nil {
		opt.MissingMarkers = c.MissingMarkers
	}
	delim, err := ParseDelimiter(c.Delimiter)
	if err != nil {
		return opt, err
	}
	opt.Delimiter = delim
	opt.SheetName = c.SheetName
	if c.SheetIndex > 0 {
		opt.SheetIndex = c.SheetIndex
	}
	return opt, nil
}

// ComboOptions converts the computation keys to combo.Options.
func (c *Global) ComboOptions() (combo.Options, error) {
	enc, err := combo.ParseEncoding(c.Encoding)
	if err != nil {
		return combo.Options{}, err
	}
	return combo.Options{Encoding: enc}, nil
}

// ParseDelimiter accepts "", ",", ";", "tab" or a literal tab.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "\t", "tab":
		return '\t', nil
	case "|", "pipe":
		return '|', nil
	}
	return 0, fmt.Errorf("unsupported delimiter: %q (use ',' | ';' | 'tab' | '|')", s)
}
