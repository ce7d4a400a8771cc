package sched

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ErrCyclic is returned by the acyclicity diagnostics. Model construction
// never checks for cycles; a cyclic graph simply yields an infeasible model.
var ErrCyclic = errors.New("dependency graph has a cycle")

// Edge is a precedence edge: From must complete before To starts, and the
// value From produces occupies Weight units of memory until To consumes it.
type Edge struct {
	From   int
	To     int
	Weight int64
}

// DependencyGraph is an immutable dataflow graph over operations 0..OpCount()-1.
type DependencyGraph struct {
	opcount int
	edges   []Edge // sorted by (From, To)
	outDeg  []int
	g       *simple.WeightedDirectedGraph
}

// NewDependencyGraph validates and freezes a graph. Every label must lie in
// [0, opcount) and every weight must be non-negative. Self-loops are
// rejected; repeated edges keep the last weight.
func NewDependencyGraph(opcount int, edges []Edge) (*DependencyGraph, error) {
	if opcount < 0 {
		return nil, fmt.Errorf("operation count must be non-negative, got %d", opcount)
	}
	g := simple.NewWeightedDirectedGraph(0, 0)
	for o := 0; o < opcount; o++ {
		g.AddNode(simple.Node(o))
	}

	index := make(map[[2]int]int, len(edges))
	kept := make([]Edge, 0, len(edges))
	for i, e := range edges {
		if e.From < 0 || e.From >= opcount || e.To < 0 || e.To >= opcount {
			return nil, fmt.Errorf("edge[%d] (%d,%d): label outside [0,%d)", i, e.From, e.To, opcount)
		}
		if e.From == e.To {
			return nil, fmt.Errorf("edge[%d] (%d,%d): self-loop", i, e.From, e.To)
		}
		if e.Weight < 0 {
			return nil, fmt.Errorf("edge[%d] (%d,%d): weight must be non-negative, got %d", i, e.From, e.To, e.Weight)
		}
		key := [2]int{e.From, e.To}
		if at, dup := index[key]; dup {
			kept[at].Weight = e.Weight
		} else {
			index[key] = len(kept)
			kept = append(kept, e)
		}
		g.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(e.From),
			T: simple.Node(e.To),
			W: float64(e.Weight),
		})
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].From != kept[j].From {
			return kept[i].From < kept[j].From
		}
		return kept[i].To < kept[j].To
	})

	outDeg := make([]int, opcount)
	for _, e := range kept {
		outDeg[e.From]++
	}
	return &DependencyGraph{opcount: opcount, edges: kept, outDeg: outDeg, g: g}, nil
}

// OpCount returns the number of operations.
func (d *DependencyGraph) OpCount() int { return d.opcount }

// NumEdges returns the number of distinct edges.
func (d *DependencyGraph) NumEdges() int { return len(d.edges) }

// Edges returns the edges sorted by (From, To). The index of an edge in this
// slice is the edge index used by the model's z variables.
func (d *DependencyGraph) Edges() []Edge {
	return append([]Edge(nil), d.edges...)
}

// Edge returns edge i in (From, To) order.
func (d *DependencyGraph) Edge(i int) Edge { return d.edges[i] }

// OutDegree returns the number of consumers of operation o.
func (d *DependencyGraph) OutDegree(o int) int { return d.outDeg[o] }

// MaxOutDegree returns the largest fan-out in the graph.
func (d *DependencyGraph) MaxOutDegree() int {
	widest := 0
	for _, n := range d.outDeg {
		if n > widest {
			widest = n
		}
	}
	return widest
}

// Weight returns the weight of edge (from, to) and whether it exists.
func (d *DependencyGraph) Weight(from, to int) (int64, bool) {
	if !d.g.HasEdgeFromTo(int64(from), int64(to)) {
		return 0, false
	}
	return int64(d.g.WeightedEdge(int64(from), int64(to)).Weight()), true
}

// TopologicalOrder returns the operations in dependency order, or ErrCyclic.
func (d *DependencyGraph) TopologicalOrder() ([]int, error) {
	nodes, err := topo.Sort(d.g)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCyclic, err)
	}
	order := make([]int, len(nodes))
	for i, n := range nodes {
		order[i] = int(n.ID())
	}
	return order, nil
}

// CheckAcyclic reports ErrCyclic when no valid schedule can exist.
func (d *DependencyGraph) CheckAcyclic() error {
	_, err := d.TopologicalOrder()
	return err
}

// CriticalPath returns the longest path length in edges, which equals the
// latency of an as-soon-as-possible schedule of unit-duration operations.
func (d *DependencyGraph) CriticalPath() (int, error) {
	order, err := d.TopologicalOrder()
	if err != nil {
		return 0, err
	}
	depth := make([]int, d.opcount)
	longest := 0
	for _, u := range order {
		to := d.g.From(int64(u))
		for to.Next() {
			v := int(to.Node().ID())
			if depth[u]+1 > depth[v] {
				depth[v] = depth[u] + 1
				if depth[v] > longest {
					longest = depth[v]
				}
			}
		}
	}
	return longest, nil
}

// ASAPSchedule returns the earliest start slot of every operation.
func (d *DependencyGraph) ASAPSchedule() ([]int, error) {
	order, err := d.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	start := make([]int, d.opcount)
	for _, u := range order {
		to := d.g.From(int64(u))
		for to.Next() {
			v := int(to.Node().ID())
			if start[u]+1 > start[v] {
				start[v] = start[u] + 1
			}
		}
	}
	return start, nil
}
