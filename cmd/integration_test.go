package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

const encountersCSV = `metformin,insulin,glipizide,readmitted
Up,Steady,No,NO
Up,Steady,No,>30
No,Steady,Steady,<30
NA,Down,No,NO
`

// resetFlags restores sticky flag values and Changed state between invocations.
func resetFlags(c *cobra.Command, names ...string) {
	for _, n := range names {
		if fl := c.Flags().Lookup(n); fl != nil {
			_ = fl.Value.Set(fl.DefValue)
			fl.Changed = false
		}
	}
}

// runCmd is a helper to execute the root command with args and capture stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd, "config", "data", "debug", "log-format")
	resetFlags(analyzeCmd, "format", "output", "encoding")
	resetFlags(usageCmd, "format")
	resetFlags(chartCmd, "output", "kind")
	resetFlags(serveCmd, "port")
	cfg, cfgErr = nil, nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func setupData(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	p := filepath.Join(home, "encounters.csv")
	if err := os.WriteFile(p, []byte(encountersCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return p
}

func TestCLI_AnalyzeJSON(t *testing.T) {
	data := setupData(t)
	out, err := runCmd(t, "analyze", "metformin", "insulin", "--data", data, "--format", "json")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	var got struct {
		FilteredRows int `json:"filtered_rows"`
		Combinations []struct {
			Combination string `json:"combination"`
		} `json:"combinations"`
		Correlation *float64 `json:"correlation"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid json output: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"Up & Steady"`) {
		t.Fatalf("combination labels should be written verbatim:\n%s", out)
	}
	if got.FilteredRows != 3 || len(got.Combinations) != 2 {
		t.Fatalf("unexpected result %+v", got)
	}
	if got.Combinations[0].Combination != "Up & Steady" || got.Combinations[1].Combination != "No & Steady" {
		t.Fatalf("unexpected combination order %+v", got.Combinations)
	}
	if got.Correlation != nil {
		t.Fatalf("insulin is constant in the filtered rows; correlation must be null")
	}
}

func TestCLI_AnalyzeMarkdownToFile(t *testing.T) {
	data := setupData(t)
	dest := filepath.Join(filepath.Dir(data), "reports", "pair.md")
	out, err := runCmd(t, "analyze", "metformin", "glipizide", "--data", data, "-o", dest)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if !strings.Contains(out, "✓ Wrote analysis to") {
		t.Fatalf("missing confirmation in %q", out)
	}
	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	for _, want := range []string{"[COMBINATION OUTCOMES]", "[SUMMARY]", "Up & No", "Pearson r:"} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("report missing %q:\n%s", want, b)
		}
	}
}

func TestCLI_AnalyzeRejectsBadSelection(t *testing.T) {
	data := setupData(t)
	for _, args := range [][]string{
		{"analyze", "metformin", "metformin", "--data", data},
		{"analyze", "metformin", "acarbose", "--data", data},
		{"analyze", "metformin", "insulin", "--data", data, "--encoding", "zigzag"},
		{"analyze", "metformin", "insulin"},
	} {
		if _, err := runCmd(t, args...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestCLI_UsageAndColumns(t *testing.T) {
	data := setupData(t)
	out, err := runCmd(t, "usage", "metformin", "--data", data, "--format", "json")
	if err != nil {
		t.Fatalf("usage failed: %v", err)
	}
	var u struct {
		Values []struct {
			Value string `json:"value"`
			Count int    `json:"count"`
		} `json:"values"`
		Missing int `json:"missing"`
	}
	if err := json.Unmarshal([]byte(out), &u); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if len(u.Values) != 2 || u.Values[0].Value != "Up" || u.Values[0].Count != 2 || u.Missing != 1 {
		t.Fatalf("unexpected usage %+v", u)
	}

	out, err = runCmd(t, "columns", "--data", data)
	if err != nil {
		t.Fatalf("columns failed: %v", err)
	}
	for _, want := range []string{"- metformin (non-missing 3, distinct 2)", "- glipizide", "- insulin"} {
		if !strings.Contains(out, want) {
			t.Fatalf("columns output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "readmitted") {
		t.Fatalf("outcome column must not be selectable:\n%s", out)
	}
}

func TestCLI_Chart(t *testing.T) {
	data := setupData(t)
	dest := filepath.Join(filepath.Dir(data), "outcome.svg")
	if _, err := runCmd(t, "chart", "metformin", "insulin", "--data", data, "-o", dest); err != nil {
		t.Fatalf("chart failed: %v", err)
	}
	b, err := os.ReadFile(dest)
	if err != nil || !strings.Contains(string(b), "<svg") {
		t.Fatalf("expected svg output, err=%v", err)
	}
	if _, err := runCmd(t, "chart", "metformin", "--kind", "usage", "--data", data, "-o", filepath.Join(filepath.Dir(data), "usage.png")); err != nil {
		t.Fatalf("usage chart failed: %v", err)
	}
	if _, err := runCmd(t, "chart", "metformin", "--data", data, "-o", dest); err == nil {
		t.Fatalf("outcome chart with one column should fail")
	}
}

func TestCLI_ConfigLoadFailureIsFatal(t *testing.T) {
	data := setupData(t)
	t.Setenv("MEDCOMBO_CACHE_SIZE", "lots")
	for _, args := range [][]string{
		{"analyze", "metformin", "insulin", "--data", data, "--format", "json"},
		{"usage", "metformin", "--data", data},
		{"columns", "--data", data},
		{"config", "show"},
	} {
		_, err := runCmd(t, args...)
		if err == nil || !strings.Contains(err.Error(), "load config") {
			t.Fatalf("%v: want config load error, got %v", args, err)
		}
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	data := setupData(t)
	cfgPath := filepath.Join(filepath.Dir(data), "medcombo.yaml")
	if _, err := runCmd(t, "--config", cfgPath, "config", "set", "encoding", "sorted"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	if _, err := runCmd(t, "--config", cfgPath, "config", "set", "data_path", data); err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	if _, err := runCmd(t, "--config", cfgPath, "config", "set", "port", "99999"); err == nil {
		t.Fatalf("expected invalid port error")
	}
	out, err := runCmd(t, "--config", cfgPath, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, "encoding: sorted") || !strings.Contains(out, "data_path: "+data) {
		t.Fatalf("unexpected config show output:\n%s", out)
	}
	// data_path from the config file is used without --data.
	if _, err := runCmd(t, "--config", cfgPath, "analyze", "metformin", "insulin", "-f", "table"); err != nil {
		t.Fatalf("analyze with configured data_path failed: %v", err)
	}
}
