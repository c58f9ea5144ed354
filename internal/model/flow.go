package model

// CalcFunc computes a rate or auxiliary value from the current system state.
// Implementations must be pure reads of the view; any bookkeeping is the
// engine's job.
type CalcFunc func(*State) float64

// Flow is a rate variable moving quantity between two stocks. A nil source
// draws from outside the model boundary; a nil target drains outside it.
type Flow struct {
	name   string
	source *Stock
	target *Stock
	calc   CalcFunc
	inputs []string
	unit   string
	rate   float64
}

// NewFlow builds a flow and registers it on its source (as an outflow) and
// target (as an inflow) when those references are present.
func NewFlow(name string, source, target *Stock, calc CalcFunc) *Flow {
	f := &Flow{name: name, source: source, target: target, calc: calc}
	if source != nil {
		source.AddOutflow(f)
	}
	if target != nil {
		target.AddInflow(f)
	}
	return f
}

// WithInputs declares the variable names this flow's rate depends on.
// Documentation-only metadata, consumed by the loop analyzer.
func (f *Flow) WithInputs(names ...string) *Flow {
	f.inputs = append(f.inputs, names...)
	return f
}

func (f *Flow) WithUnit(unit string) *Flow {
	f.unit = unit
	return f
}

// CalculateRate recomputes and caches the rate from the given pre-update
// state. The engine calls this exactly once per step.
func (f *Flow) CalculateRate(s *State) float64 {
	f.rate = f.calc(s)
	return f.rate
}

// Eval computes the rate against an arbitrary view without touching the
// cached rate. Used by perturbation analysis.
func (f *Flow) Eval(s *State) float64 { return f.calc(s) }

func (f *Flow) Name() string     { return f.name }
func (f *Flow) Rate() float64    { return f.rate }
func (f *Flow) Source() *Stock   { return f.source }
func (f *Flow) Target() *Stock   { return f.target }
func (f *Flow) Inputs() []string { return f.inputs }
func (f *Flow) Unit() string     { return f.unit }
