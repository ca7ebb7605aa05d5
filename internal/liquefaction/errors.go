package liquefaction

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a site point that cannot be computed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoMeasure is returned for grades without mitigation measures.
	ErrNoMeasure = errors.New("no mitigation measure for grade")

	// ErrUnknownCategory is returned for fortification categories outside B, C, D.
	ErrUnknownCategory = errors.New("unknown fortification category")
)

// InputError describes a single invalid field of a site point.
// Layer is the zero-based layer index, or -1 for point-level fields.
type InputError struct {
	Field  string
	Layer  int
	Value  float64
	Reason string
}

func (e *InputError) Error() string {
	if e.Layer >= 0 {
		return fmt.Sprintf("invalid input: layer %d %s = %v: %s", e.Layer+1, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid input: %s = %v: %s", e.Field, e.Value, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}
