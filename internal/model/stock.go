package model

// Stock is a level variable that accumulates its net flow over time.
type Stock struct {
	name     string
	value    float64
	unit     string
	inflows  []*Flow
	outflows []*Flow
}

func NewStock(name string, initial float64) *Stock {
	return &Stock{name: name, value: initial}
}

func (s *Stock) WithUnit(unit string) *Stock {
	s.unit = unit
	return s
}

// AddInflow registers a flow that raises this stock's level. Flows created
// with this stock as their target register themselves; calling this directly
// is only needed for flows built without a target reference.
func (s *Stock) AddInflow(f *Flow) { s.inflows = append(s.inflows, f) }

// AddOutflow registers a flow that drains this stock.
func (s *Stock) AddOutflow(f *Flow) { s.outflows = append(s.outflows, f) }

// Update integrates the stock one step with forward Euler using the flow
// rates fixed earlier in the same step. This is the only integration rule
// in the engine; it must run after every rate for the step is known.
func (s *Stock) Update(dt float64) {
	net := 0.0
	for _, f := range s.inflows {
		net += f.rate
	}
	for _, f := range s.outflows {
		net -= f.rate
	}
	s.value += net * dt
}

func (s *Stock) Name() string      { return s.name }
func (s *Stock) Value() float64    { return s.value }
func (s *Stock) Unit() string      { return s.unit }
func (s *Stock) Inflows() []*Flow  { return s.inflows }
func (s *Stock) Outflows() []*Flow { return s.outflows }
