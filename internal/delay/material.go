package delay

// Material is an N-stage conserving delay: quantity entering the line is
// held in transit across the stages and eventually leaves in full. Each
// stage drains at stage*N/delayTime; stage 0 is fed by the input and the
// output is the last stage's drain rate. Higher order sharpens the impulse
// response toward a pure transport delay of delayTime.
type Material struct {
	name      string
	delayTime float64
	order     int
	stages    []float64
	out       float64
}

// NewMaterial builds a material delay whose initial output rate is initial.
// The in-transit quantity implied by that rate is spread evenly across the
// stages. Order below 1 is clamped to 1.
func NewMaterial(name string, delayTime, initial float64, order int) (*Material, error) {
	if err := checkDelayTime("material delay", name, delayTime); err != nil {
		return nil, err
	}
	order = clampOrder(order)

	m := &Material{
		name:      name,
		delayTime: delayTime,
		order:     order,
		stages:    make([]float64, order),
		out:       initial,
	}
	// A steady throughput of initial units/time means each stage holds
	// initial*delayTime/order, so that stage*order/delayTime == initial.
	for i := range m.stages {
		m.stages[i] = initial * delayTime / float64(order)
	}
	return m, nil
}

// Update advances every stage one forward-Euler step. All inter-stage
// rates are taken from the pre-update stage values so the stages update
// synchronously, the same rule stocks follow.
func (m *Material) Update(input, dt float64) float64 {
	k := float64(m.order) / m.delayTime

	rates := make([]float64, m.order)
	for i, s := range m.stages {
		rates[i] = s * k
	}

	upstream := input
	for i := range m.stages {
		m.stages[i] += (upstream - rates[i]) * dt
		upstream = rates[i]
	}

	m.out = rates[m.order-1]
	return m.out
}

func (m *Material) Name() string    { return m.name }
func (m *Material) Output() float64 { return m.out }
func (m *Material) Order() int      { return m.order }

// InTransit reports the total quantity currently held in the stages. For
// any input history, cumulative input minus cumulative output equals this
// sum; that is the conservation invariant.
func (m *Material) InTransit() float64 {
	total := 0.0
	for _, s := range m.stages {
		total += s
	}
	return total
}
