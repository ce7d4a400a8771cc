package graphgen

import (
	"hash/fnv"
	"math/rand"
)

const (
	// SubsystemStructure drives layer sizes and edge placement.
	SubsystemStructure = "structure"
	// SubsystemWeights drives edge weights, so changing the weight range
	// never changes the shape of a generated graph.
	SubsystemWeights = "weights"
)

// PartitionedRNG hands out one deterministic stream per subsystem, seeded
// with masterSeed XOR fnv1a64(name).
//
// Not thread-safe.
type PartitionedRNG struct {
	seed       int64
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a master seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{seed: seed, subsystems: make(map[string]*rand.Rand)}
}

// ForSubsystem returns the cached stream for name, creating it on first use.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.seed ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// Seed returns the master seed.
func (p *PartitionedRNG) Seed() int64 { return p.seed }

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
