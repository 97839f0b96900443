package dataset

import (
	"fmt"
	"strings"
)

// Options controls how raw rows become a Dataset.
type Options struct {
	// OutcomeColumn names the raw readmission column. Empty means the dataset
	// carries no outcome and every row maps to OutcomeNone.
	OutcomeColumn string
	// OutcomeMapping maps raw outcome codes to labels. Codes not present map to OutcomeNone.
	OutcomeMapping map[string]Outcome
	// MissingMarkers are cell values treated as missing after trimming.
	MissingMarkers []string
	// Delimiter for CSV. If 0, picked from the file extension.
	Delimiter rune
	// XLSX sheet selection; SheetIndex is 1-based and used when SheetName is empty.
	SheetName  string
	SheetIndex int
}

// DefaultOptions returns the options used for the diabetic readmission extract.
func DefaultOptions() Options {
	return Options{
		OutcomeColumn:  "readmitted",
		OutcomeMapping: DefaultOutcomeMapping(),
		MissingMarkers: DefaultMissingMarkers(),
		SheetIndex:     1,
	}
}

// DefaultMissingMarkers mirrors the markers spreadsheet exports and pandas treat as empty.
func DefaultMissingMarkers() []string {
	return []string{"", "NA", "N/A", "NaN", "nan", "NULL", "null", "#N/A"}
}

// Dataset is an immutable in-memory table of categorical string cells.
// It is built once and only read afterwards, so it is safe for concurrent use.
type Dataset struct {
	name          string
	columns       []Column
	index         map[string]int
	outcomeColumn string
	outcomes      []Outcome
	rows          int
}

// Column is a read-only view over one dataset column.
type Column struct {
	name    string
	values  []string
	missing []bool
}

// Name returns the column header.
func (c Column) Name() string { return c.name }

// Len returns the number of rows.
func (c Column) Len() int { return len(c.values) }

// At returns the raw value of row i and whether it is present.
func (c Column) At(i int) (string, bool) {
	if c.missing[i] {
		return "", false
	}
	return c.values[i], true
}

// MissingColumnError reports a column that the loader or caller required but the header lacks.
type MissingColumnError struct {
	Column string
	Source string
}

func (e *MissingColumnError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("column %q not found in %s", e.Column, e.Source)
	}
	return fmt.Sprintf("column %q not found", e.Column)
}

// New builds a Dataset from a header and rows. Rows shorter than the header
// are padded with missing cells; longer rows are truncated. Values are trimmed
// and compared against opt.MissingMarkers. The outcome column is mapped once here.
func New(name string, header []string, rows [][]string, opt Options) (*Dataset, error) {
	ncol := len(header)
	markers := make(map[string]struct{}, len(opt.MissingMarkers))
	for _, m := range opt.MissingMarkers {
		markers[strings.TrimSpace(m)] = struct{}{}
	}
	ds := &Dataset{
		name:    name,
		columns: make([]Column, ncol),
		index:   make(map[string]int, ncol),
		rows:    len(rows),
	}
	for j, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := ds.index[h]; dup {
			return nil, fmt.Errorf("duplicate column %q in %s", h, name)
		}
		ds.index[h] = j
		ds.columns[j] = Column{
			name:    h,
			values:  make([]string, len(rows)),
			missing: make([]bool, len(rows)),
		}
	}
	for i, rec := range rows {
		for j := 0; j < ncol; j++ {
			var v string
			if j < len(rec) {
				v = strings.TrimSpace(rec[j])
			}
			if _, miss := markers[v]; miss {
				ds.columns[j].missing[i] = true
				continue
			}
			ds.columns[j].values[i] = v
		}
	}

	ds.outcomes = make([]Outcome, len(rows))
	if opt.OutcomeColumn != "" {
		col, ok := ds.Column(opt.OutcomeColumn)
		if !ok {
			return nil, &MissingColumnError{Column: opt.OutcomeColumn, Source: name}
		}
		ds.outcomeColumn = col.name
		mapping := opt.OutcomeMapping
		if mapping == nil {
			mapping = DefaultOutcomeMapping()
		}
		for i := range ds.outcomes {
			if raw, ok := col.At(i); ok {
				ds.outcomes[i] = mapping[raw]
			}
		}
	}
	return ds, nil
}

// Name returns the source name (usually the file base name).
func (d *Dataset) Name() string { return d.name }

// Len returns the number of rows.
func (d *Dataset) Len() int { return d.rows }

// Columns returns the header in file order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	for i, c := range d.columns {
		out[i] = c.name
	}
	return out
}

// Has reports whether the named column exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns the named column.
func (d *Dataset) Column(name string) (Column, bool) {
	j, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.columns[j], true
}

// Value returns the raw value at (col, row) and whether it is present.
func (d *Dataset) Value(col string, row int) (string, bool) {
	c, ok := d.Column(col)
	if !ok {
		return "", false
	}
	return c.At(row)
}

// OutcomeColumn returns the raw outcome column name, or "" if none was mapped.
func (d *Dataset) OutcomeColumn() string { return d.outcomeColumn }

// Outcome returns the mapped readmission label of row i.
func (d *Dataset) Outcome(i int) Outcome { return d.outcomes[i] }
