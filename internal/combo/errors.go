package combo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidColumn matches any *InvalidColumnError.
	ErrInvalidColumn = errors.New("invalid column")
	// ErrEmptySelection matches any *EmptySelectionError.
	ErrEmptySelection = errors.New("empty selection")
)

// InvalidColumnError reports a selected column absent from the dataset.
type InvalidColumnError struct {
	Column string
}

func (e *InvalidColumnError) Error() string {
	return fmt.Sprintf("invalid column: %q is not in the dataset", e.Column)
}

func (e *InvalidColumnError) Is(target error) bool { return target == ErrInvalidColumn }

// EmptySelectionError reports that no row has both selected columns present.
type EmptySelectionError struct {
	Col1, Col2 string
}

func (e *EmptySelectionError) Error() string {
	return fmt.Sprintf("empty selection: no rows with both %q and %q present", e.Col1, e.Col2)
}

func (e *EmptySelectionError) Is(target error) bool { return target == ErrEmptySelection }
