package server

import (
	"fmt"

	"github.com/KaramelBytes/medcombo/internal/dataset"
)

// SelectionError reports a rejected column pair.
type SelectionError struct {
	Column string
	Reason string
}

func (e *SelectionError) Error() string {
	if e.Column == "" {
		return "invalid selection: " + e.Reason
	}
	return fmt.Sprintf("invalid selection %q: %s", e.Column, e.Reason)
}

// Selection gates which columns may be compared. An empty Allowed list admits any
// column except Outcome, which is never selectable.
type Selection struct {
	Allowed []string
	Outcome string
}

// Allows reports whether name may be selected.
func (s Selection) Allows(name string) bool {
	if s.Outcome != "" && name == s.Outcome {
		return false
	}
	if len(s.Allowed) == 0 {
		return true
	}
	for _, a := range s.Allowed {
		if a == name {
			return true
		}
	}
	return false
}

// Validate checks a column pair before any computation runs.
func (s Selection) Validate(col1, col2 string) error {
	if col1 == "" || col2 == "" {
		return &SelectionError{Reason: "two columns are required"}
	}
	for _, c := range []string{col1, col2} {
		if !s.Allows(c) {
			return &SelectionError{Column: c, Reason: "not a selectable medication column"}
		}
	}
	if col1 == col2 {
		return &SelectionError{Column: col1, Reason: "columns must differ"}
	}
	return nil
}

// Present returns the selectable columns that exist in ds, in configured order.
func (s Selection) Present(ds *dataset.Dataset) []string {
	if s.Outcome == "" {
		s.Outcome = ds.OutcomeColumn()
	}
	if len(s.Allowed) == 0 {
		out := []string{}
		for _, c := range ds.Columns() {
			if s.Allows(c) {
				out = append(out, c)
			}
		}
		return out
	}
	out := []string{}
	for _, c := range s.Allowed {
		if ds.Has(c) && s.Allows(c) {
			out = append(out, c)
		}
	}
	return out
}
