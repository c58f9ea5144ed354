// Package coflow tracks an attribute quantity advected by the flows of a
// host stock: average age of a population, average quality of an
// inventory. The attribute stock changes only through the same flows that
// change the host, scaled by concentration, so "how much" and "what
// quality" stay decoupled but consistent.
package coflow

import (
	"sysflow/internal/model"
)

type inflow struct {
	flow *model.Flow
	conc model.CalcFunc
}

// Sample is one recorded (attribute stock, concentration) pair.
type Sample struct {
	AttributeStock float64
	Concentration  float64
}

// Coflow rides along a host stock. Register the host's inflows with the
// concentration each one carries and the host's outflows, which always
// leave at the current mixed concentration.
type Coflow struct {
	name          string
	host          *model.Stock
	attribute     string
	attrStock     float64
	concentration float64
	inflows       []inflow
	outflows      []*model.Flow
	history       []Sample
}

// New builds a coflow whose initial concentration is initial; the implied
// attribute stock is initial times the host's current value.
func New(name string, host *model.Stock, attribute string, initial float64) *Coflow {
	c := &Coflow{
		name:          name,
		host:          host,
		attribute:     attribute,
		concentration: initial,
		attrStock:     initial * host.Value(),
	}
	c.history = append(c.history, Sample{c.attrStock, c.concentration})
	return c
}

// AddInflow registers a host inflow together with the attribute
// concentration it carries, evaluated against the step's state.
func (c *Coflow) AddInflow(f *model.Flow, conc model.CalcFunc) {
	c.inflows = append(c.inflows, inflow{flow: f, conc: conc})
}

// AddOutflow registers a host outflow. Outflows drain attribute at the
// coflow's current concentration; no function is needed.
func (c *Coflow) AddOutflow(f *model.Flow) {
	c.outflows = append(c.outflows, f)
}

// Update advances the attribute stock one step using the flow rates fixed
// earlier in the same step, then refreshes the concentration. When the
// host is empty the previous concentration is held rather than dividing by
// zero.
func (c *Coflow) Update(s *model.State, dt float64) {
	attrIn := 0.0
	for _, in := range c.inflows {
		attrIn += in.flow.Rate() * in.conc(s)
	}
	attrOut := 0.0
	for _, out := range c.outflows {
		attrOut += out.Rate() * c.concentration
	}

	c.attrStock += (attrIn - attrOut) * dt
	if c.host.Value() > 0 {
		c.concentration = c.attrStock / c.host.Value()
	}
	c.history = append(c.history, Sample{c.attrStock, c.concentration})
}

func (c *Coflow) Name() string            { return c.name }
func (c *Coflow) Attribute() string       { return c.attribute }
func (c *Coflow) Host() *model.Stock      { return c.host }
func (c *Coflow) AttributeStock() float64 { return c.attrStock }
func (c *Coflow) Concentration() float64  { return c.concentration }

// History returns the recorded samples, index 0 being the initial state.
func (c *Coflow) History() []Sample { return c.history }
