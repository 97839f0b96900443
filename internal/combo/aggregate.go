package combo

import (
	"github.com/KaramelBytes/medcombo/internal/dataset"
)

// KeySeparator joins the two values of a combination for display.
const KeySeparator = " & "

// Combination is an observed (v1, v2) pair of the two selected columns.
type Combination struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// Key returns the display key "{v1} & {v2}".
func (c Combination) Key() string { return c.First + KeySeparator + c.Second }

// ConditionalDistribution is the readmission breakdown within one combination.
// Percentages are over Labeled rows; when Labeled is 0 all three are 0.
type ConditionalDistribution struct {
	Up   float64 `json:"up"`
	Down float64 `json:"down"`
	No   float64 `json:"no"`
	// Rows is the group size; Labeled counts rows with a mapped outcome.
	Rows    int `json:"rows"`
	Labeled int `json:"labeled"`
}

// Percent returns the percentage for one outcome label.
func (d ConditionalDistribution) Percent(o dataset.Outcome) float64 {
	switch o {
	case dataset.OutcomeUp:
		return d.Up
	case dataset.OutcomeDown:
		return d.Down
	case dataset.OutcomeNo:
		return d.No
	}
	return 0
}

// CombinationOutcome is one row of the combination outcome table.
type CombinationOutcome struct {
	Combination
	ConditionalDistribution
}

// Aggregation is the partition of the filtered subset by combination.
type Aggregation struct {
	Col1, Col2 string
	// Combinations in the order first seen in the filtered subset.
	Combinations []Combination
	// Distributions is keyed by the combination itself, not its display key,
	// so values containing the separator cannot collide.
	Distributions map[Combination]ConditionalDistribution
	// FilteredRows is the size of the filtered subset.
	FilteredRows int
}

// Rows returns the combination outcome table in first-seen order.
func (a *Aggregation) Rows() []CombinationOutcome {
	out := make([]CombinationOutcome, len(a.Combinations))
	for i, c := range a.Combinations {
		out[i] = CombinationOutcome{Combination: c, ConditionalDistribution: a.Distributions[c]}
	}
	return out
}

// Aggregate partitions the rows where col1 and col2 are both present by their
// (v1, v2) pair and computes the readmission distribution of each group.
func Aggregate(ds *dataset.Dataset, col1, col2 string) (*Aggregation, error) {
	sub, err := Filter(ds, col1, col2)
	if err != nil {
		return nil, err
	}
	return aggregateSubset(ds, sub, col1, col2)
}

func aggregateSubset(ds *dataset.Dataset, sub *Subset, col1, col2 string) (*Aggregation, error) {
	if sub.Len() == 0 {
		return nil, &EmptySelectionError{Col1: col1, Col2: col2}
	}

	type acc struct {
		rows   int
		counts [4]int // indexed by dataset.Outcome
	}
	groups := make(map[Combination]*acc)
	agg := &Aggregation{Col1: col1, Col2: col2, FilteredRows: sub.Len()}
	for i, r := range sub.Rows {
		v1, v2 := sub.Pair(i)
		key := Combination{First: v1, Second: v2}
		g := groups[key]
		if g == nil {
			g = &acc{}
			groups[key] = g
			agg.Combinations = append(agg.Combinations, key)
		}
		g.rows++
		g.counts[ds.Outcome(r)]++
	}

	agg.Distributions = make(map[Combination]ConditionalDistribution, len(groups))
	for _, key := range agg.Combinations {
		g := groups[key]
		labeled := g.rows - g.counts[dataset.OutcomeNone]
		d := ConditionalDistribution{Rows: g.rows, Labeled: labeled}
		if labeled > 0 {
			d.Up = percent(g.counts[dataset.OutcomeUp], labeled)
			d.Down = percent(g.counts[dataset.OutcomeDown], labeled)
			d.No = percent(g.counts[dataset.OutcomeNo], labeled)
		}
		agg.Distributions[key] = d
	}
	return agg, nil
}

func percent(n, total int) float64 {
	return float64(n) * 100 / float64(total)
}
