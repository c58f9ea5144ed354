package delay

import (
	"fmt"
	"math"
)

// Fixed is an exact pipeline delay: the output at time t is the input that
// arrived at t−delayTime. Until the simulation is old enough to have such
// an input, the output is the initial value supplied at construction, a
// startup transient rather than an error.
type Fixed struct {
	name      string
	delayTime float64
	buf       []float64
	w         int
	out       float64
}

// NewFixed sizes the ring buffer from the simulation timestep; the buffer
// holds ceil(delayTime/dt)+1 samples. Delay times that are not a multiple
// of dt are served with at most one timestep of discretization error.
func NewFixed(name string, delayTime, initial, dt float64) (*Fixed, error) {
	if err := checkDelayTime("fixed delay", name, delayTime); err != nil {
		return nil, err
	}
	if dt <= 0 {
		return nil, fmt.Errorf("fixed delay %q: timestep must be positive, got %v: %w",
			name, dt, ErrInvalidConfig)
	}

	n := int(math.Ceil(delayTime/dt)) + 1
	f := &Fixed{
		name:      name,
		delayTime: delayTime,
		buf:       make([]float64, n),
		out:       initial,
	}
	for i := range f.buf {
		f.buf[i] = initial
	}
	return f, nil
}

// Update pushes the step's input and returns the oldest retained sample,
// the one pushed delayTime ago.
func (f *Fixed) Update(input, dt float64) float64 {
	f.buf[f.w] = input
	f.w = (f.w + 1) % len(f.buf)
	f.out = f.buf[f.w]
	return f.out
}

func (f *Fixed) Name() string    { return f.name }
func (f *Fixed) Output() float64 { return f.out }
