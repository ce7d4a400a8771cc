// Package graphgen generates random layered dataflow graphs for
// benchmarking the scheduler. Generation is fully determined by the seed.
package graphgen

import (
	"fmt"

	"github.com/dfgsched/dfgsched/sched"
)

// Config describes one random benchmark.
type Config struct {
	Ops       int     `yaml:"ops"`        // number of operations
	Layers    int     `yaml:"layers"`     // number of dependency layers, 1..Ops
	EdgeProb  float64 `yaml:"edge_prob"`  // chance of each extra edge to the next layer
	MinWeight int64   `yaml:"min_weight"` // inclusive
	MaxWeight int64   `yaml:"max_weight"` // inclusive
	Seed      int64   `yaml:"seed"`
}

// Validate rejects configurations that cannot produce a graph.
func (c Config) Validate() error {
	if c.Ops < 1 {
		return fmt.Errorf("ops must be positive, got %d", c.Ops)
	}
	if c.Layers < 1 || c.Layers > c.Ops {
		return fmt.Errorf("layers must be in [1,%d], got %d", c.Ops, c.Layers)
	}
	if c.EdgeProb < 0 || c.EdgeProb > 1 {
		return fmt.Errorf("edge_prob must be in [0,1], got %v", c.EdgeProb)
	}
	if c.MinWeight < 0 || c.MaxWeight < c.MinWeight {
		return fmt.Errorf("weights must satisfy 0 <= min_weight <= max_weight, got [%d,%d]", c.MinWeight, c.MaxWeight)
	}
	return nil
}

// Generate builds a layered DAG. Operations are labeled layer by layer, so
// labels are already a topological order. Every operation outside the
// first layer has a producer in the previous layer, and every operation
// outside the last layer has a consumer in the next one, so no operation
// is isolated when Layers > 1. Extra edges to the next layer are added
// with probability EdgeProb.
func Generate(cfg Config) (*sched.DependencyGraph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := NewPartitionedRNG(cfg.Seed)
	structure := rng.ForSubsystem(SubsystemStructure)
	weights := rng.ForSubsystem(SubsystemWeights)

	layers := layerSizes(cfg.Ops, cfg.Layers, structure.Intn)
	start := make([]int, len(layers)+1)
	for i, n := range layers {
		start[i+1] = start[i] + n
	}

	linked := make(map[[2]int]bool)
	var edges []sched.Edge
	link := func(from, to int) {
		key := [2]int{from, to}
		if linked[key] {
			return
		}
		linked[key] = true
		w := cfg.MinWeight
		if span := cfg.MaxWeight - cfg.MinWeight; span > 0 {
			w += weights.Int63n(span + 1)
		}
		edges = append(edges, sched.Edge{From: from, To: to, Weight: w})
	}

	for l := 1; l < len(layers); l++ {
		prev, cur := start[l-1], start[l]
		prevN, curN := layers[l-1], layers[l]
		for p := cur; p < cur+curN; p++ {
			link(prev+structure.Intn(prevN), p)
		}
		for o := prev; o < prev+prevN; o++ {
			link(o, cur+structure.Intn(curN))
			for p := cur; p < cur+curN; p++ {
				if structure.Float64() < cfg.EdgeProb {
					link(o, p)
				}
			}
		}
	}
	return sched.NewDependencyGraph(cfg.Ops, edges)
}

// layerSizes splits ops into n non-empty layers.
func layerSizes(ops, n int, intn func(int) int) []int {
	sizes := make([]int, n)
	for i := range sizes {
		sizes[i] = 1
	}
	for extra := ops - n; extra > 0; extra-- {
		sizes[intn(n)]++
	}
	return sizes
}
