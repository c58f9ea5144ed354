// Package behavior names the characteristic behavior modes a
// stock-and-flow structure can produce, for labeling analysis output.
package behavior

import "fmt"

// Kind enumerates the canonical behavior modes.
type Kind int

const (
	ExponentialGrowth Kind = iota
	ExponentialDecay
	GoalSeeking
	Oscillation
	SShapedGrowth
	OvershootAndCollapse
)

func (k Kind) String() string {
	switch k {
	case ExponentialGrowth:
		return "exponential growth"
	case ExponentialDecay:
		return "exponential decay"
	case GoalSeeking:
		return "goal seeking"
	case Oscillation:
		return "oscillation"
	case SShapedGrowth:
		return "s-shaped growth"
	case OvershootAndCollapse:
		return "overshoot and collapse"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Mode describes one expected behavior mode of a model: which entities
// produce it and, where meaningful, the level it converges to or is
// limited by.
type Mode struct {
	Kind        Kind
	Name        string
	Components  []string
	Description string

	// Goal is the level a goal-seeking mode converges to; Capacity is the
	// ceiling of an s-shaped or overshoot mode. Zero when inapplicable.
	Goal     float64
	Capacity float64
}

func (m Mode) String() string {
	if m.Name == "" {
		return m.Kind.String()
	}
	return fmt.Sprintf("%s (%s)", m.Name, m.Kind)
}
