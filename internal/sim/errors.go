package sim

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig marks construction failures: non-positive timestep,
// duplicate entity names, late registration. Fatal, never retried.
var ErrInvalidConfig = errors.New("invalid simulation configuration")

// ComputeError reports a calculation that failed during a step: a rate or
// auxiliary function produced NaN/Inf or looked up a name the model does
// not define. It aborts the step; history stays as of the last successful
// step.
type ComputeError struct {
	Entity string
	Step   int
	Time   float64
	Reason string
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("%s: step %d (t=%.4f): %s", e.Entity, e.Step, e.Time, e.Reason)
}
