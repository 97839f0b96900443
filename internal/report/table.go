package report

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode selects how a table renders.
type Mode int

const (
	ASCII    Mode = iota // box-drawn terminal table
	Markdown             // GitHub-flavoured Markdown table
)

// tableBuilder wraps a go-pretty writer and renders in one Mode.
type tableBuilder struct {
	w    table.Writer
	mode Mode
}

func newTable(m Mode) *tableBuilder {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	return &tableBuilder{w: w, mode: m}
}

func (t *tableBuilder) header(cols ...string) {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = t.cell(c)
	}
	t.w.AppendHeader(row)
}

func (t *tableBuilder) row(vals ...any) {
	row := make(table.Row, len(vals))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			v = t.cell(s)
		}
		row[i] = v
	}
	t.w.AppendRow(row)
}

// alignRight right-aligns the given 1-based columns.
func (t *tableBuilder) alignRight(cols ...int) {
	cfgs := make([]table.ColumnConfig, len(cols))
	for i, n := range cols {
		cfgs[i] = table.ColumnConfig{Number: n, Align: text.AlignRight}
	}
	t.w.SetColumnConfigs(cfgs)
}

func (t *tableBuilder) cell(s string) string {
	if t.mode == Markdown {
		return safeVal(s)
	}
	return s
}

func (t *tableBuilder) String() string {
	if t.mode == Markdown {
		return t.w.RenderMarkdown()
	}
	return t.w.Render()
}
