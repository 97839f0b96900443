package combo

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/medcombo/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// CountVocabulary is the fixed label set tallied in a SummaryRow.
//
// These literals are compared against the medication column's own dosage
// values, not against the mapped readmission labels, even though "No", "Up"
// and "Down" also appear there. The dashboard has always reported it this way;
// whether the overlap with the outcome vocabulary was intended is still open
// with the clinical reviewers.
var CountVocabulary = []string{"No", "Up", "Steady", "Down"}

// SummaryRow summarizes one selected column.
type SummaryRow struct {
	Column string
	// Mode is the most frequent value over the whole dataset (ties go to the
	// value seen first); nil when the column has no values at all.
	Mode *string
	// Literal value tallies within the filtered subset.
	No, Up, Steady, Down int
	// Count is the non-missing count within the filtered subset.
	Count int
}

// CountOf returns the tally for a CountVocabulary label.
func (s SummaryRow) CountOf(label string) int {
	switch label {
	case "No":
		return s.No
	case "Up":
		return s.Up
	case "Steady":
		return s.Steady
	case "Down":
		return s.Down
	}
	return 0
}

// Encoding selects how categorical values are mapped to integers before correlating.
type Encoding int

const (
	// EncodeFirstSeen numbers distinct values in order of first appearance.
	EncodeFirstSeen Encoding = iota
	// EncodeSorted numbers distinct values in lexicographic order.
	EncodeSorted
)

func (e Encoding) String() string {
	if e == EncodeSorted {
		return "sorted"
	}
	return "first-seen"
}

// ParseEncoding accepts "first-seen" or "sorted".
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first-seen", "firstseen", "first_seen":
		return EncodeFirstSeen, nil
	case "sorted", "lexical":
		return EncodeSorted, nil
	}
	return EncodeFirstSeen, fmt.Errorf("unknown encoding %q (use first-seen or sorted)", s)
}

// Statistics is the output of Summarize.
type Statistics struct {
	First, Second SummaryRow
	// Correlation is Pearson r of the encoded columns; NaN when undefined.
	Correlation float64
	// Matrix is the symmetric 2x2 correlation matrix for display.
	Matrix [2][2]float64
	// Levels lists each column's distinct values in encoding order (code = index).
	Levels [2][]string
	Encoding Encoding
}

// Summarize computes the summary rows of col1 and col2 and the correlation of
// their integer encodings within the filtered subset. Degenerate data yields
// nil modes and NaN correlations, never an error.
func Summarize(ds *dataset.Dataset, col1, col2 string, opt Options) (*Statistics, error) {
	sub, err := Filter(ds, col1, col2)
	if err != nil {
		return nil, err
	}
	return summarizeSubset(sub, opt), nil
}

func summarizeSubset(sub *Subset, opt Options) *Statistics {
	st := &Statistics{
		First:    summaryRow(sub, sub.First),
		Second:   summaryRow(sub, sub.Second),
		Encoding: opt.Encoding,
	}

	x, lx := encode(sub, sub.First, opt.Encoding)
	y, ly := encode(sub, sub.Second, opt.Encoding)
	st.Levels = [2][]string{lx, ly}
	st.Correlation = pearson(x, y, len(lx), len(ly))

	diag := func(levels int) float64 {
		if levels < 2 {
			return math.NaN()
		}
		return 1
	}
	st.Matrix = [2][2]float64{
		{diag(len(lx)), st.Correlation},
		{st.Correlation, diag(len(ly))},
	}
	return st
}

func summaryRow(sub *Subset, c dataset.Column) SummaryRow {
	row := SummaryRow{Column: c.Name(), Mode: mode(c)}
	for _, r := range sub.Rows {
		v, ok := c.At(r)
		if !ok {
			continue
		}
		row.Count++
		switch v {
		case "No":
			row.No++
		case "Up":
			row.Up++
		case "Steady":
			row.Steady++
		case "Down":
			row.Down++
		}
	}
	return row
}

// mode scans the full column, not the filtered subset.
func mode(c dataset.Column) *string {
	counts := map[string]int{}
	var order []string
	for i := 0; i < c.Len(); i++ {
		v, ok := c.At(i)
		if !ok {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	if len(order) == 0 {
		return nil
	}
	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return &best
}

// encode maps the column's subset values to integer codes and returns the codes
// with the level list (level i has code i).
func encode(sub *Subset, c dataset.Column, e Encoding) ([]float64, []string) {
	codes := map[string]int{}
	var levels []string
	for _, r := range sub.Rows {
		v, _ := c.At(r)
		if _, ok := codes[v]; !ok {
			codes[v] = len(levels)
			levels = append(levels, v)
		}
	}
	if e == EncodeSorted {
		sort.Strings(levels)
		for i, v := range levels {
			codes[v] = i
		}
	}
	out := make([]float64, len(sub.Rows))
	for i, r := range sub.Rows {
		v, _ := c.At(r)
		out[i] = float64(codes[v])
	}
	return out, levels
}

// pearson returns NaN when either side is constant or there are fewer than two rows.
func pearson(x, y []float64, levelsX, levelsY int) float64 {
	if len(x) < 2 || levelsX < 2 || levelsY < 2 {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return math.NaN()
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}
