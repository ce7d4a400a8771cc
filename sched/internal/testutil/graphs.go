// Package testutil provides shared fixtures for the sched test packages.
package testutil

// EdgeSpec is an edge literal used by the fixtures: from, to, weight.
type EdgeSpec [3]int64

// Fixture is a named small graph with known scheduling properties.
type Fixture struct {
	Name    string
	OpCount int
	Edges   []EdgeSpec
	// CriticalPath is the longest path in hops (ASAP latency).
	CriticalPath int
}

// TwoNode is 0->1 with weight 5.
var TwoNode = Fixture{Name: "two-node", OpCount: 2, Edges: []EdgeSpec{{0, 1, 5}}, CriticalPath: 1}

// Diamond is 0->1, 0->2, 1->3, 2->3 with unit weights.
var Diamond = Fixture{
	Name:         "diamond",
	OpCount:      4,
	Edges:        []EdgeSpec{{0, 1, 1}, {0, 2, 1}, {1, 3, 1}, {2, 3, 1}},
	CriticalPath: 2,
}

// FanOut is 0->1, 0->2 with unit weights: one producer, two consumers.
var FanOut = Fixture{Name: "fan-out", OpCount: 3, Edges: []EdgeSpec{{0, 1, 1}, {0, 2, 1}}, CriticalPath: 1}

// TwoChains is two independent unit-weight edges 0->1 and 2->3. Running them
// side by side is fast but doubles memory; running them back to back halves
// memory and costs one slot.
var TwoChains = Fixture{Name: "two-chains", OpCount: 4, Edges: []EdgeSpec{{0, 1, 1}, {2, 3, 1}}, CriticalPath: 1}

// Chain is 0->1->2->3 with weights 3, 1, 2.
var Chain = Fixture{Name: "chain", OpCount: 4, Edges: []EdgeSpec{{0, 1, 3}, {1, 2, 1}, {2, 3, 2}}, CriticalPath: 3}

// All lists every fixture.
var All = []Fixture{TwoNode, Diamond, FanOut, TwoChains, Chain}
