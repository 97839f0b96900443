package combo

import (
	"github.com/KaramelBytes/medcombo/internal/dataset"
)

// ValueCount is the frequency of one raw value.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// UsageDistribution is the count per raw value of one column over the whole dataset.
type UsageDistribution struct {
	Column  string       `json:"column"`
	Values  []ValueCount `json:"values"` // first-seen order
	Missing int          `json:"missing"`
}

// Total returns the number of non-missing values.
func (u *UsageDistribution) Total() int {
	n := 0
	for _, v := range u.Values {
		n += v.Count
	}
	return n
}

// Usage counts each raw value of col across the full dataset.
func Usage(ds *dataset.Dataset, col string) (*UsageDistribution, error) {
	c, err := column(ds, col)
	if err != nil {
		return nil, err
	}
	u := &UsageDistribution{Column: col}
	idx := map[string]int{}
	for i := 0; i < c.Len(); i++ {
		v, ok := c.At(i)
		if !ok {
			u.Missing++
			continue
		}
		j, seen := idx[v]
		if !seen {
			j = len(u.Values)
			idx[v] = j
			u.Values = append(u.Values, ValueCount{Value: v})
		}
		u.Values[j].Count++
	}
	return u, nil
}

// JointTable is the contingency table of the two columns over the filtered subset.
// Counts[i][j] is the number of rows with (RowLabels[i], ColLabels[j]).
type JointTable struct {
	Col1      string   `json:"col1"`
	Col2      string   `json:"col2"`
	RowLabels []string `json:"row_labels"`
	ColLabels []string `json:"col_labels"`
	Counts    [][]int  `json:"counts"`
}

// Joint cross-tabulates col1 against col2 over the rows where both are present.
func Joint(ds *dataset.Dataset, col1, col2 string) (*JointTable, error) {
	sub, err := Filter(ds, col1, col2)
	if err != nil {
		return nil, err
	}
	return jointSubset(sub, col1, col2), nil
}

func jointSubset(sub *Subset, col1, col2 string) *JointTable {
	jt := &JointTable{Col1: col1, Col2: col2}
	rowIdx := map[string]int{}
	colIdx := map[string]int{}
	type cell struct{ r, c int }
	counts := map[cell]int{}
	for i := range sub.Rows {
		v1, v2 := sub.Pair(i)
		r, ok := rowIdx[v1]
		if !ok {
			r = len(jt.RowLabels)
			rowIdx[v1] = r
			jt.RowLabels = append(jt.RowLabels, v1)
		}
		c, ok := colIdx[v2]
		if !ok {
			c = len(jt.ColLabels)
			colIdx[v2] = c
			jt.ColLabels = append(jt.ColLabels, v2)
		}
		counts[cell{r, c}]++
	}
	jt.Counts = make([][]int, len(jt.RowLabels))
	for r := range jt.Counts {
		jt.Counts[r] = make([]int, len(jt.ColLabels))
		for c := range jt.Counts[r] {
			jt.Counts[r][c] = counts[cell{r, c}]
		}
	}
	return jt
}
