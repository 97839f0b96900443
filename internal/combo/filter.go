package combo

import (
	"github.com/KaramelBytes/medcombo/internal/dataset"
)

// Subset is the filtered subset: the rows where both selected columns are present.
type Subset struct {
	First, Second dataset.Column
	// Rows holds dataset row indices in natural order.
	Rows []int
}

// Len returns the number of rows in the subset.
func (s *Subset) Len() int { return len(s.Rows) }

// Pair returns the (v1, v2) values of the i-th subset row.
func (s *Subset) Pair(i int) (string, string) {
	r := s.Rows[i]
	v1, _ := s.First.At(r)
	v2, _ := s.Second.At(r)
	return v1, v2
}

// Filter returns the rows of ds where col1 and col2 are both non-missing.
// An empty subset is not an error here; callers decide how to treat it.
func Filter(ds *dataset.Dataset, col1, col2 string) (*Subset, error) {
	c1, err := column(ds, col1)
	if err != nil {
		return nil, err
	}
	c2, err := column(ds, col2)
	if err != nil {
		return nil, err
	}
	s := &Subset{First: c1, Second: c2}
	for i := 0; i < ds.Len(); i++ {
		if _, ok := c1.At(i); !ok {
			continue
		}
		if _, ok := c2.At(i); !ok {
			continue
		}
		s.Rows = append(s.Rows, i)
	}
	return s, nil
}

func column(ds *dataset.Dataset, name string) (dataset.Column, error) {
	c, ok := ds.Column(name)
	if !ok {
		return dataset.Column{}, &InvalidColumnError{Column: name}
	}
	return c, nil
}
