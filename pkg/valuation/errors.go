package valuation

import (
	"errors"
	"fmt"
	"math"
)

// Error kinds reported by the valuation core. Callers match them with
// errors.Is; the wrapped message names the offending field or value.
var (
	// ErrInvalidAssumption reports an out-of-range, non-finite, or
	// inconsistent input.
	ErrInvalidAssumption = errors.New("invalid assumption")

	// ErrDivergentTerminalValue reports a Gordon-growth terminal value whose
	// denominator (discount rate - terminal growth) is zero or negative.
	ErrDivergentTerminalValue = errors.New("divergent terminal value")

	// ErrDivisionByZero reports a ratio whose base is zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrMalformedGrid reports axis and label sequences that do not describe
	// a rectangular grid.
	ErrMalformedGrid = errors.New("malformed grid")
)

type namedValue struct {
	name  string
	value float64
}

// checkFinite returns ErrInvalidAssumption for the first NaN or infinite
// value in fields.
func checkFinite(fields ...namedValue) error {
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidAssumption, f.name, f.value)
		}
	}
	return nil
}
