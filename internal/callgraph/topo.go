package callgraph

import (
	"slices"

	"symbex/internal/ir"
)

type Topo struct {
	Order   []ir.FunctionID   // callers before callees
	Batches [][]ir.FunctionID // waves of functions with no pending callers
	Cyclic  bool
	Cycles  []ir.FunctionID // functions left with callers after the sort
}

// ToposortKahn orders the functions of g. Functions on a cycle, and those
// only reachable through one, are left out of Order and reported in Cycles.
func ToposortKahn(g *Graph) *Topo {
	indeg := slices.Clone(g.Indeg)
	topo := &Topo{
		Order:   make([]ir.FunctionID, 0, len(g.Funcs)),
		Batches: make([][]ir.FunctionID, 0),
	}

	current := make([]int, 0, len(g.Funcs))
	for i := range g.Funcs {
		if indeg[i] == 0 {
			current = append(current, i)
		}
	}

	visited := 0
	for len(current) > 0 {
		batch := make([]ir.FunctionID, len(current))
		next := make([]int, 0)
		for k, n := range current {
			batch[k] = g.Funcs[n]
			topo.Order = append(topo.Order, g.Funcs[n])
			visited++
			for _, to := range g.Edges[n] {
				indeg[to]--
				if indeg[to] == 0 {
					next = append(next, to)
				}
			}
		}
		topo.Batches = append(topo.Batches, batch)
		slices.Sort(next)
		current = next
	}

	if visited != len(g.Funcs) {
		topo.Cyclic = true
		for i, d := range indeg {
			if d > 0 {
				topo.Cycles = append(topo.Cycles, g.Funcs[i])
			}
		}
	}
	return topo
}

// Recursive lists the functions that may take part in recursion. A
// forward sort leaves cycles plus everything below them; sorting the
// reversed leftovers trims the functions that merely hang off a cycle.
func (g *Graph) Recursive() []ir.FunctionID {
	fwd := ToposortKahn(g)
	if !fwd.Cyclic {
		return nil
	}
	left := make(map[int]struct{}, len(fwd.Cycles))
	for _, id := range fwd.Cycles {
		left[g.index[id]] = struct{}{}
	}
	sub := g.reversed()
	for i := range sub.Edges {
		if _, ok := left[i]; !ok {
			for _, to := range sub.Edges[i] {
				sub.Indeg[to]--
			}
			sub.Edges[i] = nil
		}
	}
	back := ToposortKahn(sub)
	out := make([]ir.FunctionID, 0, len(back.Cycles))
	for _, id := range back.Cycles {
		if _, ok := left[g.index[id]]; ok {
			out = append(out, id)
		}
	}
	return out
}
