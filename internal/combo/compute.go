package combo

import (
	"github.com/KaramelBytes/medcombo/internal/dataset"
)

// Options controls a computation.
type Options struct {
	// Encoding is the categorical-to-integer rule used for correlation.
	Encoding Encoding
}

// DefaultOptions returns first-seen encoding.
func DefaultOptions() Options {
	return Options{Encoding: EncodeFirstSeen}
}

// Result is everything the dashboard shows for one pair of columns.
type Result struct {
	Col1, Col2  string
	Usage       [2]*UsageDistribution
	Joint       *JointTable
	Aggregation *Aggregation
	Statistics  *Statistics
}

// Compute recomputes every view for (col1, col2) from the full dataset.
// The aggregation and statistics share one filtered subset.
func Compute(ds *dataset.Dataset, col1, col2 string, opt Options) (*Result, error) {
	sub, err := Filter(ds, col1, col2)
	if err != nil {
		return nil, err
	}
	agg, err := aggregateSubset(ds, sub, col1, col2)
	if err != nil {
		return nil, err
	}
	u1, err := Usage(ds, col1)
	if err != nil {
		return nil, err
	}
	u2, err := Usage(ds, col2)
	if err != nil {
		return nil, err
	}
	return &Result{
		Col1:        col1,
		Col2:        col2,
		Usage:       [2]*UsageDistribution{u1, u2},
		Joint:       jointSubset(sub, col1, col2),
		Aggregation: agg,
		Statistics:  summarizeSubset(sub, opt),
	}, nil
}
