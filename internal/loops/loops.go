// Package loops identifies the feedback structure of an assembled model:
// which entities form cycles, and whether each cycle is reinforcing or
// balancing. Dependencies come from two places: the structural links
// between flows and their stocks, and the declared input names on flows
// and auxiliaries.
package loops

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"sysflow/internal/model"
	"sysflow/internal/sim"
)

// Polarity classifications for a feedback loop.
const (
	Reinforcing  = 1
	Balancing    = -1
	Undetermined = 0
)

// Loop is one elementary feedback cycle, rotated to start at its
// lexicographically smallest entity name.
type Loop struct {
	Path     []string
	Polarity int
}

// Kind names the loop's polarity.
func (l Loop) Kind() string {
	switch l.Polarity {
	case Reinforcing:
		return "reinforcing"
	case Balancing:
		return "balancing"
	default:
		return "undetermined"
	}
}

// Structure is the analyzed feedback structure of a model.
type Structure struct {
	Loops []Loop
}

// Reinforcing returns the loops that amplify disturbances.
func (s *Structure) Reinforcing() []Loop { return s.byPolarity(Reinforcing) }

// Balancing returns the loops that counteract disturbances.
func (s *Structure) Balancing() []Loop { return s.byPolarity(Balancing) }

func (s *Structure) byPolarity(p int) []Loop {
	var out []Loop
	for _, l := range s.Loops {
		if l.Polarity == p {
			out = append(out, l)
		}
	}
	return out
}

type analyzer struct {
	simulation *sim.Simulation
	g          *simple.DirectedGraph
	ids        map[string]int64
	names      map[int64]string
	polarity   map[[2]int64]int
}

// Analyze builds the dependency graph of the simulation and extracts all
// elementary cycles. Edge polarities between a flow and its stocks are
// structural; polarities of declared inputs are measured by perturbing
// the input slightly on a pinned state view, leaving the simulation
// untouched.
func Analyze(s *sim.Simulation) *Structure {
	a := &analyzer{
		simulation: s,
		g:          simple.NewDirectedGraph(),
		ids:        make(map[string]int64),
		names:      make(map[int64]string),
		polarity:   make(map[[2]int64]int),
	}

	for _, st := range s.Stocks() {
		a.node(st.Name())
	}
	for _, f := range s.Flows() {
		a.node(f.Name())
	}
	for _, x := range s.Auxiliaries() {
		a.node(x.Name())
	}

	for _, f := range s.Flows() {
		if f.Target() != nil {
			a.edge(f.Name(), f.Target().Name(), Reinforcing)
		}
		if f.Source() != nil {
			a.edge(f.Name(), f.Source().Name(), Balancing)
		}
		for _, in := range f.Inputs() {
			a.edge(in, f.Name(), a.measure(in, f.Eval))
		}
	}
	for _, x := range s.Auxiliaries() {
		for _, in := range x.Inputs() {
			a.edge(in, x.Name(), a.measure(in, x.Eval))
		}
	}

	return &Structure{Loops: a.cycles()}
}

func (a *analyzer) node(name string) {
	if _, ok := a.ids[name]; ok {
		return
	}
	n := a.g.NewNode()
	a.g.AddNode(n)
	a.ids[name] = n.ID()
	a.names[n.ID()] = name
}

func (a *analyzer) edge(from, to string, polarity int) {
	fi, ok := a.ids[from]
	if !ok {
		return // input names a parameter or an unknown; never part of a cycle
	}
	ti := a.ids[to]
	if fi == ti {
		return
	}
	a.g.SetEdge(a.g.NewEdge(a.g.Node(fi), a.g.Node(ti)))
	a.polarity[[2]int64{fi, ti}] = polarity
}

// measure estimates the sign of d(eval)/d(input) by symmetric
// perturbation around the input's current value. The pinned view keeps
// the live state untouched.
func (a *analyzer) measure(input string, eval func(*model.State) float64) int {
	const (
		eps       = 1e-6
		threshold = 1e-12
	)
	base, ok := a.value(input)
	if !ok {
		return Undetermined
	}
	st := a.simulation.State()
	hi := eval(st.Pin(input, base+eps))
	lo := eval(st.Pin(input, base-eps))
	st.TakeMissing()

	switch d := hi - lo; {
	case d > threshold:
		return Reinforcing
	case d < -threshold:
		return Balancing
	default:
		return Undetermined
	}
}

func (a *analyzer) value(name string) (float64, bool) {
	s := a.simulation
	for _, st := range s.Stocks() {
		if st.Name() == name {
			return st.Value(), true
		}
	}
	for _, x := range s.Auxiliaries() {
		if x.Name() == name {
			return x.Value(), true
		}
	}
	for _, f := range s.Flows() {
		if f.Name() == name {
			return f.Rate(), true
		}
	}
	for _, p := range s.Parameters() {
		if p.Name() == name {
			return p.Value(), true
		}
	}
	return 0, false
}

func (a *analyzer) cycles() []Loop {
	var loops []Loop
	for _, cycle := range topo.DirectedCyclesIn(a.g) {
		loops = append(loops, a.loopOf(cycle))
	}
	sort.Slice(loops, func(i, j int) bool {
		return pathKey(loops[i].Path) < pathKey(loops[j].Path)
	})
	return loops
}

// loopOf converts a cycle (first node repeated at the end) into a Loop,
// rotated to a canonical starting point, with the polarity product of
// its edges.
func (a *analyzer) loopOf(cycle []graph.Node) Loop {
	nodes := cycle[:len(cycle)-1]

	start := 0
	for i := range nodes {
		if a.names[nodes[i].ID()] < a.names[nodes[start].ID()] {
			start = i
		}
	}

	n := len(nodes)
	path := make([]string, 0, n)
	polarity := 1
	for i := 0; i < n; i++ {
		cur := nodes[(start+i)%n].ID()
		next := nodes[(start+i+1)%n].ID()
		path = append(path, a.names[cur])
		polarity *= a.polarity[[2]int64{cur, next}]
	}
	return Loop{Path: path, Polarity: polarity}
}

func pathKey(path []string) string {
	key := ""
	for _, p := range path {
		key += p + "\x00"
	}
	return key
}
