// Package table provides lookup functions defined by sample points, the
// standard way to express nonlinear relationships in stock-and-flow
// models without writing a formula.
package table

import (
	"errors"
	"fmt"
	"sort"

	"sysflow/internal/model"
)

// ErrInvalidConfig marks table definitions that cannot be looked up:
// too few points, mismatched slices, or x values out of order.
var ErrInvalidConfig = errors.New("invalid lookup table")

// Table maps an input to an output by piecewise-linear interpolation
// between sample points, clamping outside the sampled range.
type Table struct {
	name string
	xs   []float64
	ys   []float64
}

// New builds a lookup table from sample points. The x values must be
// strictly increasing and both slices need at least two entries.
func New(name string, xs, ys []float64) (*Table, error) {
	if len(xs) < 2 {
		return nil, fmt.Errorf("table %q needs at least 2 points, got %d: %w", name, len(xs), ErrInvalidConfig)
	}
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("table %q has %d x values but %d y values: %w", name, len(xs), len(ys), ErrInvalidConfig)
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return nil, fmt.Errorf("table %q x values must be strictly increasing at index %d: %w", name, i, ErrInvalidConfig)
		}
	}

	t := &Table{name: name, xs: make([]float64, len(xs)), ys: make([]float64, len(ys))}
	copy(t.xs, xs)
	copy(t.ys, ys)
	return t, nil
}

// Lookup interpolates linearly between the two bracketing points. Inputs
// below the first x return the first y; inputs above the last x return
// the last y.
func (t *Table) Lookup(x float64) float64 {
	if x <= t.xs[0] {
		return t.ys[0]
	}
	last := len(t.xs) - 1
	if x >= t.xs[last] {
		return t.ys[last]
	}

	i := sort.SearchFloat64s(t.xs, x)
	frac := (x - t.xs[i-1]) / (t.xs[i] - t.xs[i-1])
	return t.ys[i-1] + frac*(t.ys[i]-t.ys[i-1])
}

// Func adapts the table to a calculation function: the input function is
// evaluated against the state and looked up.
func (t *Table) Func(input model.CalcFunc) model.CalcFunc {
	return func(s *model.State) float64 {
		return t.Lookup(input(s))
	}
}

func (t *Table) Name() string { return t.name }

// Points returns copies of the sample coordinates.
func (t *Table) Points() (xs, ys []float64) {
	xs = make([]float64, len(t.xs))
	ys = make([]float64, len(t.ys))
	copy(xs, t.xs)
	copy(ys, t.ys)
	return xs, ys
}
