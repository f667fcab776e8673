package graph

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/roach88/versets/internal/vset"
)

// Cycle is an elementary cycle of binding edges. The first set is
// repeated at the end: A -> B -> C -> A is [A B C A].
type Cycle []*vset.Set

// FindElementaryCycles returns every elementary cycle over the binding
// edges reachable from sets. Each cycle is reported once, starting at the
// set that comes first in traversal order.
//
// The search is a depth-first walk with an explicit path stack, started
// from every set in turn and restricted to sets not yet used as a start,
// so rotations of one cycle are never reported twice.
func FindElementaryCycles(sets []*vset.Set) []Cycle {
	nodes := Reachable(sets, true)
	order := make(map[*vset.Set]int, len(nodes))
	for i, n := range nodes {
		order[n] = i
	}

	var cycles []Cycle
	for i, start := range nodes {
		onPath := map[*vset.Set]bool{start: true}
		path := []*vset.Set{start}

		var visit func(s *vset.Set)
		visit = func(s *vset.Set) {
			for _, t := range s.Binding() {
				idx, ok := order[t]
				if !ok || idx < i {
					continue
				}
				if t == start {
					c := make(Cycle, 0, len(path)+1)
					c = append(c, path...)
					cycles = append(cycles, append(c, start))
					continue
				}
				if onPath[t] {
					continue
				}
				onPath[t] = true
				path = append(path, t)
				visit(t)
				path = path[:len(path)-1]
				onPath[t] = false
			}
		}
		visit(start)
	}
	return cycles
}

// Components returns the groups of mutually bound sets: the strongly
// connected components of the binding graph with more than one set, plus
// single sets bound by themselves. Components are ordered by their first
// set in traversal order.
func Components(sets []*vset.Set) [][]*vset.Set {
	nodes := Reachable(sets, true)
	order := make(map[*vset.Set]int64, len(nodes))
	for i, n := range nodes {
		order[n] = int64(i)
	}

	g := simple.NewDirectedGraph()
	for i := range nodes {
		g.AddNode(simple.Node(int64(i)))
	}
	selfBound := make(map[int64]bool)
	for i, n := range nodes {
		for _, t := range n.Binding() {
			j := order[t]
			if j == int64(i) {
				selfBound[j] = true
				continue
			}
			g.SetEdge(g.NewEdge(simple.Node(int64(i)), simple.Node(j)))
		}
	}

	var out [][]*vset.Set
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) == 1 && !selfBound[scc[0].ID()] {
			continue
		}
		ids := make([]int64, len(scc))
		for k, n := range scc {
			ids[k] = n.ID()
		}
		slices.Sort(ids)
		group := make([]*vset.Set, len(ids))
		for k, id := range ids {
			group[k] = nodes[id]
		}
		out = append(out, group)
	}
	slices.SortFunc(out, func(a, b []*vset.Set) int {
		return int(order[a[0]] - order[b[0]])
	})
	return out
}
