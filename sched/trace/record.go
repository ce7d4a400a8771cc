// Package trace records every solve issued during a Pareto exploration.
// This package has no dependencies on sched/; it stores pure data types.
package trace

import "time"

// SolveRecord captures a single solve: the bounds and objective it was
// given and what the backend answered.
type SolveRecord struct {
	Step        string        `yaml:"step" json:"step"`
	Objective   string        `yaml:"objective" json:"objective"`
	MemoryModel string        `yaml:"memory_model" json:"memory_model"`
	Lmax        *int          `yaml:"lmax,omitempty" json:"lmax,omitempty"`   // nil when latency was free
	Mmax        *int64        `yaml:"mmax,omitempty" json:"mmax,omitempty"`   // nil when memory was free
	Alpha       *float64      `yaml:"alpha,omitempty" json:"alpha,omitempty"` // set for linearization solves only
	Status      string        `yaml:"status" json:"status"`
	Memory      int64         `yaml:"memory" json:"memory"`
	Latency     int64         `yaml:"latency" json:"latency"`
	Artifact    string        `yaml:"artifact,omitempty" json:"artifact,omitempty"`
	Elapsed     time.Duration `yaml:"elapsed" json:"elapsed"`
	Skipped     bool          `yaml:"skipped,omitempty" json:"skipped,omitempty"` // infeasible interior point that was skipped
}
