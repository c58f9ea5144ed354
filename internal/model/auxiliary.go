package model

// Auxiliary is a derived value recomputed every step before any flow rate.
// Auxiliaries are evaluated in registration order, not dependency order: an
// auxiliary that reads one registered after it sees the previous step's
// value. Declare inputs and run the loop analyzer's order check to catch
// such stale reads.
type Auxiliary struct {
	name   string
	calc   CalcFunc
	inputs []string
	unit   string
	value  float64
}

// NewAuxiliary builds an auxiliary. The input names are documentation-only
// metadata describing what the calculation reads; they are not enforced.
func NewAuxiliary(name string, calc CalcFunc, inputs ...string) *Auxiliary {
	return &Auxiliary{name: name, calc: calc, inputs: inputs}
}

func (a *Auxiliary) WithUnit(unit string) *Auxiliary {
	a.unit = unit
	return a
}

// CalculateValue recomputes and caches the value from the given pre-update
// state. The engine calls this exactly once per step, before flows.
func (a *Auxiliary) CalculateValue(s *State) float64 {
	a.value = a.calc(s)
	return a.value
}

// Eval computes the value against an arbitrary view without touching the
// cache. Used by perturbation analysis.
func (a *Auxiliary) Eval(s *State) float64 { return a.calc(s) }

func (a *Auxiliary) Name() string     { return a.name }
func (a *Auxiliary) Value() float64   { return a.value }
func (a *Auxiliary) Inputs() []string { return a.inputs }
func (a *Auxiliary) Unit() string     { return a.unit }
