package report

import (
	"math"

	"github.com/KaramelBytes/medcombo/internal/combo"
)

// SummaryLabels are the row labels of the summary table, top to bottom.
var SummaryLabels = []string{"Mode", "No", "Up", "Steady", "Down", "Count"}

// CombinationRow is one line of the combination outcome table.
type CombinationRow struct {
	Combination string  `json:"combination"`
	First       string  `json:"first"`
	Second      string  `json:"second"`
	Up          float64 `json:"up"`
	Down        float64 `json:"down"`
	No          float64 `json:"no"`
	Rows        int     `json:"rows"`
	Labeled     int     `json:"labeled"`
}

// SummaryCell is one row of the summary table: a label and one value per column.
// Values are a string (or null) for Mode and integers otherwise.
type SummaryCell struct {
	Label  string `json:"label"`
	Values [2]any `json:"values"`
}

// View is the JSON-safe rendering of a combo.Result. NaN statistics become null.
type View struct {
	Col1         string                      `json:"col1"`
	Col2         string                      `json:"col2"`
	FilteredRows int                         `json:"filtered_rows"`
	Combinations []CombinationRow            `json:"combinations"`
	Summary      []SummaryCell               `json:"summary"`
	Correlation  *float64                    `json:"correlation"`
	Matrix       [2][2]*float64              `json:"matrix"`
	Levels       [2][]string                 `json:"levels"`
	Encoding     string                      `json:"encoding"`
	Usage        [2]*combo.UsageDistribution `json:"usage"`
	Joint        *combo.JointTable           `json:"joint"`
}

// NewView flattens a result for serialization.
func NewView(res *combo.Result) *View {
	st := res.Statistics
	v := &View{
		Col1:         res.Col1,
		Col2:         res.Col2,
		FilteredRows: res.Aggregation.FilteredRows,
		Summary:      summaryCells(st),
		Correlation:  nullable(st.Correlation),
		Levels:       st.Levels,
		Encoding:     st.Encoding.String(),
		Usage:        res.Usage,
		Joint:        res.Joint,
	}
	for i := range st.Matrix {
		for j := range st.Matrix[i] {
			v.Matrix[i][j] = nullable(st.Matrix[i][j])
		}
	}
	for _, r := range res.Aggregation.Rows() {
		v.Combinations = append(v.Combinations, CombinationRow{
			Combination: r.Key(),
			First:       r.First,
			Second:      r.Second,
			Up:          r.Up,
			Down:        r.Down,
			No:          r.No,
			Rows:        r.Rows,
			Labeled:     r.Labeled,
		})
	}
	return v
}

func summaryCells(st *combo.Statistics) []SummaryCell {
	rows := [2]combo.SummaryRow{st.First, st.Second}
	out := make([]SummaryCell, 0, len(SummaryLabels))
	for _, label := range SummaryLabels {
		c := SummaryCell{Label: label}
		for i, r := range rows {
			switch label {
			case "Mode":
				if r.Mode != nil {
					c.Values[i] = *r.Mode
				}
			case "Count":
				c.Values[i] = r.Count
			default:
				c.Values[i] = r.CountOf(label)
			}
		}
		out = append(out, c)
	}
	return out
}

func nullable(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
