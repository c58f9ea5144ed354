package delay

// Information is an N-stage smoothing delay: each stage exponentially
// adjusts toward its upstream value with time constant delayTime/N, and
// the output is the last stage itself. Nothing is conserved; the structure
// models perception and reporting lags.
type Information struct {
	name      string
	delayTime float64
	order     int
	stages    []float64
	out       float64
}

// NewInformation builds an information delay with every stage preloaded to
// initial, so the output starts at initial and stays there under a
// constant input of the same value. Order below 1 is clamped to 1.
func NewInformation(name string, delayTime, initial float64, order int) (*Information, error) {
	if err := checkDelayTime("information delay", name, delayTime); err != nil {
		return nil, err
	}
	order = clampOrder(order)

	d := &Information{
		name:      name,
		delayTime: delayTime,
		order:     order,
		stages:    make([]float64, order),
		out:       initial,
	}
	for i := range d.stages {
		d.stages[i] = initial
	}
	return d, nil
}

// Update adjusts every stage one forward-Euler step toward its upstream
// value, reading all upstream values before any stage moves.
func (d *Information) Update(input, dt float64) float64 {
	k := float64(d.order) / d.delayTime

	prev := make([]float64, d.order)
	copy(prev, d.stages)

	upstream := input
	for i := range d.stages {
		d.stages[i] += (upstream - prev[i]) * k * dt
		upstream = prev[i]
	}

	d.out = d.stages[d.order-1]
	return d.out
}

func (d *Information) Name() string    { return d.name }
func (d *Information) Output() float64 { return d.out }
func (d *Information) Order() int      { return d.order }
