package model

// State is the read-only view through which calculation functions observe
// the system. Lookups resolve against the entity collections owned by one
// simulation; name-to-index maps are built once at construction so per-step
// lookups stay O(1).
//
// Values are read live from the entities, so what a lookup returns depends
// on where the engine is in its step protocol: during auxiliary and flow
// evaluation stocks still hold their pre-update values, while auxiliaries
// evaluated earlier in the same step are already fresh.
type State struct {
	time   float64
	stocks []*Stock
	flows  []*Flow
	auxes  []*Auxiliary
	params []*Parameter

	stockIdx map[string]int
	flowIdx  map[string]int
	auxIdx   map[string]int
	paramIdx map[string]int

	delayIdx map[string]int
	delayOut []float64

	overrides map[string]float64
	missing   string
}

func NewState(stocks []*Stock, flows []*Flow, auxes []*Auxiliary, params []*Parameter) *State {
	s := &State{
		stocks:   stocks,
		flows:    flows,
		auxes:    auxes,
		params:   params,
		stockIdx: make(map[string]int, len(stocks)),
		flowIdx:  make(map[string]int, len(flows)),
		auxIdx:   make(map[string]int, len(auxes)),
		paramIdx: make(map[string]int, len(params)),
		delayIdx: make(map[string]int),
	}
	for i, st := range stocks {
		s.stockIdx[st.name] = i
	}
	for i, f := range flows {
		s.flowIdx[f.name] = i
	}
	for i, a := range auxes {
		s.auxIdx[a.name] = i
	}
	for i, p := range params {
		s.paramIdx[p.name] = i
	}
	return s
}

// Time reports the simulation time at the start of the current step.
func (s *State) Time() float64 { return s.time }

// Stock returns the named stock's current value. An unknown name records a
// missing-lookup fault and returns zero; the engine converts the fault into
// a computation error after the calculation returns.
func (s *State) Stock(name string) float64 {
	if v, ok := s.override(name); ok {
		return v
	}
	i, ok := s.stockIdx[name]
	if !ok {
		s.note(name)
		return 0
	}
	return s.stocks[i].value
}

// Flow returns the named flow's cached rate: this step's rate if the flow
// was already evaluated this step, otherwise the previous step's.
func (s *State) Flow(name string) float64 {
	if v, ok := s.override(name); ok {
		return v
	}
	i, ok := s.flowIdx[name]
	if !ok {
		s.note(name)
		return 0
	}
	return s.flows[i].rate
}

// Aux returns the named auxiliary's cached value. During flow evaluation
// every auxiliary is fresh for the step; during auxiliary evaluation only
// those registered earlier are.
func (s *State) Aux(name string) float64 {
	if v, ok := s.override(name); ok {
		return v
	}
	i, ok := s.auxIdx[name]
	if !ok {
		s.note(name)
		return 0
	}
	return s.auxes[i].value
}

func (s *State) Param(name string) float64 {
	if v, ok := s.override(name); ok {
		return v
	}
	i, ok := s.paramIdx[name]
	if !ok {
		s.note(name)
		return 0
	}
	return s.params[i].value
}

// Delay returns the named delay line's current output, i.e. the output as
// of its most recent update. Delays update after stocks, so a flow reading
// this sees the previous step's output.
func (s *State) Delay(name string) float64 {
	if v, ok := s.override(name); ok {
		return v
	}
	i, ok := s.delayIdx[name]
	if !ok {
		s.note(name)
		return 0
	}
	return s.delayOut[i]
}

func (s *State) override(name string) (float64, bool) {
	if len(s.overrides) == 0 {
		return 0, false
	}
	v, ok := s.overrides[name]
	return v, ok
}

func (s *State) note(name string) {
	if s.missing == "" {
		s.missing = name
	}
}

// TakeMissing returns the first unknown name looked up since the last call
// and clears it. Engine use.
func (s *State) TakeMissing() string {
	m := s.missing
	s.missing = ""
	return m
}

// SetTime stamps the view with the current step's start time. Engine use.
func (s *State) SetTime(t float64) { s.time = t }

// RegisterDelay reserves an output slot for a delay line. Engine use.
func (s *State) RegisterDelay(name string, initial float64) int {
	s.delayIdx[name] = len(s.delayOut)
	s.delayOut = append(s.delayOut, initial)
	return len(s.delayOut) - 1
}

// SetDelayOutput publishes a delay line's latest output. Engine use.
func (s *State) SetDelayOutput(slot int, v float64) { s.delayOut[slot] = v }

// HasDelay reports whether a delay line with the given name is registered.
func (s *State) HasDelay(name string) bool {
	_, ok := s.delayIdx[name]
	return ok
}

// Pin returns a derived view in which lookups of name, in any category,
// yield v instead of the stored value. The receiver is not modified and no
// entity is mutated; layered pins accumulate. Perturbation analysis uses
// this to probe link polarities without breaking entity invariants.
func (s *State) Pin(name string, v float64) *State {
	d := *s
	d.overrides = make(map[string]float64, len(s.overrides)+1)
	for k, ov := range s.overrides {
		d.overrides[k] = ov
	}
	d.overrides[name] = v
	return &d
}
