package dynamo

import (
	"errors"
	"fmt"
	"math"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates a missing or out-of-range parameter.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrDiverged indicates the state is no longer finite.
	ErrDiverged = errors.New("dynamo: simulation diverged (NaN or Inf detected)")
)

// ParameterError names the offending key and the constraint it violated.
type ParameterError struct {
	Key        string
	Constraint string
	Value      float64
	Missing    bool
}

func (e *ParameterError) Error() string {
	if e.Missing {
		return fmt.Sprintf("dynamo: invalid parameter %s: missing (%s)", e.Key, e.Constraint)
	}
	return fmt.Sprintf("dynamo: invalid parameter %s: %s, got %g", e.Key, e.Constraint, e.Value)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// RequirePositive looks up key and fails unless it is present and > 0.
func RequirePositive(p Params, key string) (float64, error) {
	v, ok := p[key]
	if !ok {
		return 0, &ParameterError{Key: key, Constraint: "must be > 0", Missing: true}
	}
	if !(v > 0) || math.IsInf(v, 1) {
		return 0, &ParameterError{Key: key, Constraint: "must be finite and > 0", Value: v}
	}
	return v, nil
}

// OptionalFinite returns p[key], or def when absent. A present value must be
// finite.
func OptionalFinite(p Params, key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParameterError{Key: key, Constraint: "must be finite", Value: v}
	}
	return v, nil
}
