// Package delay implements the three time-lag structures of stock-and-flow
// modeling: material delays (conserving transit), information delays
// (exponential smoothing) and fixed delays (exact transport).
//
// All three are stateful across calls: Update must be invoked exactly once
// per simulation step with that step's input; calling out of step order is
// undefined.
package delay

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig marks construction failures (non-positive delay time or
// timestep). Fatal, never retried.
var ErrInvalidConfig = errors.New("invalid delay configuration")

// Line is the contract shared by all delay structures. Update consumes the
// current input signal, advances the internal state by one timestep and
// returns the new output. Output re-reads the latest output without
// advancing.
type Line interface {
	Name() string
	Update(input, dt float64) float64
	Output() float64
}

func checkDelayTime(kind, name string, delayTime float64) error {
	if delayTime <= 0 {
		return fmt.Errorf("%s %q: delay time must be positive, got %v: %w",
			kind, name, delayTime, ErrInvalidConfig)
	}
	return nil
}

// clampOrder raises an order below 1 to 1. Documented leniency, not an
// error: a zeroth-order delay has no meaning and first-order is the
// closest structure.
func clampOrder(order int) int {
	if order < 1 {
		return 1
	}
	return order
}
