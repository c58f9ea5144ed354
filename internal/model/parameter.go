package model

// Parameter is a named constant used by flow and auxiliary calculations.
// Its value is fixed for the life of a simulation.
type Parameter struct {
	name        string
	value       float64
	unit        string
	description string
}

func NewParameter(name string, value float64) *Parameter {
	return &Parameter{name: name, value: value}
}

// WithUnit tags the parameter with a unit expression such as "people/day".
// The engine never requires units; they feed the optional unit checker.
func (p *Parameter) WithUnit(unit string) *Parameter {
	p.unit = unit
	return p
}

func (p *Parameter) WithDescription(desc string) *Parameter {
	p.description = desc
	return p
}

func (p *Parameter) Name() string        { return p.name }
func (p *Parameter) Value() float64      { return p.value }
func (p *Parameter) Unit() string        { return p.unit }
func (p *Parameter) Description() string { return p.description }
