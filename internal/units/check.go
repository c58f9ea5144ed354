package units

import (
	"errors"
	"fmt"

	"sysflow/internal/model"
	"sysflow/internal/sim"
)

// CheckModel verifies the dimensional consistency of a simulation: every
// flow attached to a stock must carry the stock's unit per the given time
// unit. Entities without a unit are skipped. All violations are reported
// together, not just the first.
func CheckModel(r *Registry, s *sim.Simulation, timeUnit string) error {
	timeQ, err := r.Parse(timeUnit)
	if err != nil {
		return fmt.Errorf("time unit: %w", err)
	}

	var errs []error
	for _, st := range s.Stocks() {
		if st.Unit() == "" {
			continue
		}
		stockQ, err := r.Parse(st.Unit())
		if err != nil {
			errs = append(errs, fmt.Errorf("stock %q: %w", st.Name(), err))
			continue
		}
		rateDims := stockQ.Div(timeQ).Dims

		for _, f := range st.Inflows() {
			errs = append(errs, checkFlow(r, f, st, rateDims)...)
		}
		for _, f := range st.Outflows() {
			errs = append(errs, checkFlow(r, f, st, rateDims)...)
		}
	}
	return errors.Join(errs...)
}

func checkFlow(r *Registry, f *model.Flow, st *model.Stock, rateDims Dims) []error {
	if f.Unit() == "" {
		return nil
	}
	flowQ, err := r.Parse(f.Unit())
	if err != nil {
		return []error{fmt.Errorf("flow %q: %w", f.Name(), err)}
	}
	if !flowQ.Dims.Equal(rateDims) {
		return []error{fmt.Errorf(
			"flow %q has unit %s but stock %q requires %s: %w",
			f.Name(), flowQ.Dims, st.Name(), rateDims, ErrMismatch,
		)}
	}
	return nil
}
