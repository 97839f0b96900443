// Package report renders combination results for terminals, Markdown files and JSON consumers.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/KaramelBytes/medcombo/internal/combo"
	"github.com/KaramelBytes/medcombo/internal/utils"
)

// Format is an output format accepted by Write.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
)

// ParseFormat accepts markdown|md, table|text, or json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "table", "text":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported format: %q (use markdown|table|json)", s)
}

// Write renders res to w in the requested format.
func Write(w io.Writer, res *combo.Result, f Format) error {
	var out string
	switch f {
	case FormatJSON:
		b, err := utils.PrettyJSON(NewView(res))
		if err != nil {
			return err
		}
		out = string(b) + "\n"
	case FormatTable:
		out = Render(res, ASCII)
	default:
		out = Render(res, Markdown)
	}
	_, err := io.WriteString(w, out)
	return err
}

// Render produces the sectioned report of one column pair.
func Render(res *combo.Result, m Mode) string {
	var b strings.Builder
	agg := res.Aggregation
	st := res.Statistics

	b.WriteString("[SELECTION]\n")
	b.WriteString(fmt.Sprintf("Columns: %s x %s\n", res.Col1, res.Col2))
	b.WriteString(fmt.Sprintf("Rows with both present: %d\n", agg.FilteredRows))
	b.WriteString(fmt.Sprintf("Combinations: %d\n\n", len(agg.Combinations)))

	b.WriteString("[COMBINATION OUTCOMES]\n")
	b.WriteString(CombinationTable(agg, m))
	b.WriteString("\n\n")

	b.WriteString("[SUMMARY]\n")
	b.WriteString(SummaryTable(st, m))
	b.WriteString("\n\n")

	b.WriteString("[CORRELATION]\n")
	b.WriteString(fmt.Sprintf("Encoding: %s\n", st.Encoding))
	b.WriteString(fmt.Sprintf("Pearson r: %s\n", formatR(st.Correlation)))
	b.WriteString(MatrixTable(res.Col1, res.Col2, st.Matrix, m))
	b.WriteString("\n\n")

	b.WriteString("[JOINT COUNTS]\n")
	b.WriteString(JointTable(res.Joint, m))
	b.WriteString("\n\n")

	b.WriteString("[USAGE]\n")
	for i, u := range res.Usage {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(UsageTable(u, m))
		b.WriteString("\n")
	}
	return b.String()
}

// CombinationTable lists each combination with its readmission percentages.
func CombinationTable(agg *combo.Aggregation, m Mode) string {
	t := newTable(m)
	t.header("Combination", "Up %", "Down %", "No %", "Rows", "Labeled")
	for _, r := range agg.Rows() {
		t.row(r.Key(), pct(r.Up), pct(r.Down), pct(r.No), r.Rows, r.Labeled)
	}
	t.alignRight(2, 3, 4, 5, 6)
	return t.String()
}

// SummaryTable has one column per selected medication and the rows Mode, No, Up, Steady, Down, Count.
func SummaryTable(st *combo.Statistics, m Mode) string {
	t := newTable(m)
	t.header("", st.First.Column, st.Second.Column)
	for _, c := range summaryCells(st) {
		row := []any{c.Label}
		for _, v := range c.Values {
			if v == nil {
				v = "-"
			}
			row = append(row, v)
		}
		t.row(row...)
	}
	return t.String()
}

// MatrixTable renders the 2x2 correlation matrix.
func MatrixTable(col1, col2 string, mat [2][2]float64, m Mode) string {
	t := newTable(m)
	t.header("", col1, col2)
	names := [2]string{col1, col2}
	for i := range mat {
		t.row(names[i], formatR(mat[i][0]), formatR(mat[i][1]))
	}
	t.alignRight(2, 3)
	return t.String()
}

// JointTable renders the contingency counts.
func JointTable(jt *combo.JointTable, m Mode) string {
	t := newTable(m)
	header := append([]string{jt.Col1 + " \\ " + jt.Col2}, jt.ColLabels...)
	t.header(header...)
	for i, label := range jt.RowLabels {
		row := []any{label}
		for _, n := range jt.Counts[i] {
			row = append(row, n)
		}
		t.row(row...)
	}
	return t.String()
}

// UsageTable renders one column's value counts.
func UsageTable(u *combo.UsageDistribution, m Mode) string {
	t := newTable(m)
	t.header(u.Column, "Count")
	for _, v := range u.Values {
		t.row(v.Value, v.Count)
	}
	if u.Missing > 0 {
		t.row("(missing)", u.Missing)
	}
	t.alignRight(2)
	return t.String()
}

func pct(f float64) string { return fmt.Sprintf("%.1f", f) }

func formatR(r float64) string {
	if math.IsNaN(r) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", r)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
