// Package callgraph builds the static call graph of an IR program.
package callgraph

import (
	"maps"
	"slices"

	"symbex/internal/ir"
)

// Graph holds caller to callee edges between functions, indexed by the
// position of each function in Funcs.
type Graph struct {
	Funcs []ir.FunctionID
	Edges [][]int // Edges[caller] = callees, sorted and unique
	Indeg []int

	index map[ir.FunctionID]int
}

// Build collects every static call of p. Calls to functions missing from
// the program are ignored; validation reports them.
func Build(p *ir.Program) *Graph {
	funcs := slices.Sorted(maps.Keys(p.Functions))
	g := &Graph{
		Funcs: funcs,
		Edges: make([][]int, len(funcs)),
		Indeg: make([]int, len(funcs)),
		index: make(map[ir.FunctionID]int, len(funcs)),
	}
	for i, id := range funcs {
		g.index[id] = i
	}
	for i, id := range funcs {
		seen := make(map[int]struct{})
		for _, bid := range slices.Sorted(maps.Keys(p.Functions[id].Blocks)) {
			bb := p.Functions[id].Blocks[bid]
			for j := range bb.Instrs {
				in := &bb.Instrs[j]
				if in.Kind != ir.InstrCall || in.Call.Callee.Kind != ir.CalleeStatic {
					continue
				}
				to, ok := g.index[in.Call.Callee.Func]
				if !ok {
					continue
				}
				if _, dup := seen[to]; dup {
					continue
				}
				seen[to] = struct{}{}
				g.Edges[i] = append(g.Edges[i], to)
				g.Indeg[to]++
			}
		}
		slices.Sort(g.Edges[i])
	}
	return g
}

// Callees lists the functions fn calls directly.
func (g *Graph) Callees(fn ir.FunctionID) []ir.FunctionID {
	i, ok := g.index[fn]
	if !ok {
		return nil
	}
	out := make([]ir.FunctionID, len(g.Edges[i]))
	for k, to := range g.Edges[i] {
		out[k] = g.Funcs[to]
	}
	return out
}

// Reachable lists the functions reachable from root, root included, in
// ascending id order.
func (g *Graph) Reachable(root ir.FunctionID) []ir.FunctionID {
	start, ok := g.index[root]
	if !ok {
		return nil
	}
	seen := make([]bool, len(g.Funcs))
	seen[start] = true
	queue := []int{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, to := range g.Edges[n] {
			if !seen[to] {
				seen[to] = true
				queue = append(queue, to)
			}
		}
	}
	var out []ir.FunctionID
	for i, ok := range seen {
		if ok {
			out = append(out, g.Funcs[i])
		}
	}
	return out
}

// Unreachable lists the functions that root never reaches.
func (g *Graph) Unreachable(root ir.FunctionID) []ir.FunctionID {
	reach := make(map[ir.FunctionID]struct{})
	for _, id := range g.Reachable(root) {
		reach[id] = struct{}{}
	}
	var out []ir.FunctionID
	for _, id := range g.Funcs {
		if _, ok := reach[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func (g *Graph) reversed() *Graph {
	r := &Graph{
		Funcs: g.Funcs,
		Edges: make([][]int, len(g.Funcs)),
		Indeg: make([]int, len(g.Funcs)),
		index: g.index,
	}
	for from, tos := range g.Edges {
		for _, to := range tos {
			r.Edges[to] = append(r.Edges[to], from)
			r.Indeg[from]++
		}
	}
	return r
}
