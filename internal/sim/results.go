package sim

// Results is the time-indexed record of a simulation: one row per executed
// step, one column per recorded quantity (stock values, flow rates,
// auxiliary values, delay outputs, coflow attributes).
type Results struct {
	Times []float64

	names []string
	index map[string]int
	rows  [][]float64
}

func newResults(names []string) *Results {
	r := &Results{
		names: names,
		index: make(map[string]int, len(names)),
	}
	for i, n := range names {
		r.index[n] = i
	}
	return r
}

func (r *Results) append(t float64, row []float64) {
	r.Times = append(r.Times, t)
	r.rows = append(r.rows, row)
}

// Len reports the number of recorded steps.
func (r *Results) Len() int { return len(r.Times) }

// Names lists the column names in recording order.
func (r *Results) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Series returns the full column for one name, or nil when the name was
// never recorded.
func (r *Results) Series(name string) []float64 {
	i, ok := r.index[name]
	if !ok {
		return nil
	}
	out := make([]float64, len(r.rows))
	for j, row := range r.rows {
		out[j] = row[i]
	}
	return out
}

// Value returns the recorded value of name at row i.
func (r *Results) Value(i int, name string) (float64, bool) {
	j, ok := r.index[name]
	if !ok || i < 0 || i >= len(r.rows) {
		return 0, false
	}
	return r.rows[i][j], true
}

// Row returns the raw values of row i, ordered as Names().
func (r *Results) Row(i int) []float64 { return r.rows[i] }
