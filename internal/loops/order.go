package loops

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"sysflow/internal/sim"
)

// CheckAuxOrder lints the auxiliary evaluation order. Auxiliaries run in
// registration order, so one that reads an auxiliary registered after it
// sees the previous step's value. Each such forward reference produces a
// warning; a dependency cycle among auxiliaries, which no ordering can
// fix, is reported as an error.
func CheckAuxOrder(s *sim.Simulation) ([]string, error) {
	auxes := s.Auxiliaries()
	index := make(map[string]int, len(auxes))
	for i, a := range auxes {
		index[a.Name()] = i
	}

	var warnings []string
	g := simple.NewDirectedGraph()
	nodes := make([]int64, len(auxes))
	for i := range auxes {
		n := g.NewNode()
		g.AddNode(n)
		nodes[i] = n.ID()
	}

	for i, a := range auxes {
		for _, in := range a.Inputs() {
			j, ok := index[in]
			if !ok {
				continue
			}
			if j == i {
				return warnings, fmt.Errorf("auxiliary %q reads itself", a.Name())
			}
			g.SetEdge(g.NewEdge(g.Node(nodes[j]), g.Node(nodes[i])))
			if j > i {
				warnings = append(warnings, fmt.Sprintf(
					"auxiliary %q reads %q, which is evaluated later in the step; it sees the previous step's value",
					a.Name(), in,
				))
			}
		}
	}

	if cycles := topo.DirectedCyclesIn(g); len(cycles) > 0 {
		names := make([]string, 0, len(cycles[0])-1)
		for _, n := range cycles[0][:len(cycles[0])-1] {
			for i, id := range nodes {
				if id == n.ID() {
					names = append(names, auxes[i].Name())
				}
			}
		}
		return warnings, fmt.Errorf("auxiliary dependency cycle: %v", names)
	}
	return warnings, nil
}
