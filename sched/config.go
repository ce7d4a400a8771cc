package sched

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DefaultTimeLimit is the wall-clock budget given to the backend when a
// SolveConfig leaves TimeLimit unset.
const DefaultTimeLimit = 60 * time.Second

var (
	// ErrUnknownObjective is a configuration error: the objective token is not recognized.
	ErrUnknownObjective = errors.New("unknown objective")
	// ErrUnknownMemoryModel is a configuration error: the memory model token is not recognized.
	ErrUnknownMemoryModel = errors.New("unknown memory model")
	// ErrInvalidConfig covers every other rejected configuration value.
	ErrInvalidConfig = errors.New("invalid solve configuration")
)

// Objective selects what a solve minimizes.
type Objective string

const (
	// ObjectiveMemory minimizes M.
	ObjectiveMemory Objective = "memory"
	// ObjectiveLatency minimizes L.
	ObjectiveLatency Objective = "latency"
	// ObjectiveLinearization minimizes alpha*L + (1-alpha)*M.
	ObjectiveLinearization Objective = "linearization"
	// ObjectiveFeasibility adds no objective term. Only valid when both
	// latency and memory are fixed.
	ObjectiveFeasibility Objective = "feasibility"
)

var validObjectives = map[Objective]bool{
	ObjectiveMemory:        true,
	ObjectiveLatency:       true,
	ObjectiveLinearization: true,
	ObjectiveFeasibility:   true,
	"":                     true, // empty means feasibility
}

// ParseObjective validates an objective token.
func ParseObjective(s string) (Objective, error) {
	obj := Objective(s)
	if !validObjectives[obj] {
		return "", fmt.Errorf("%w %q; valid: memory, latency, linearization, feasibility", ErrUnknownObjective, s)
	}
	if obj == "" {
		obj = ObjectiveFeasibility
	}
	return obj, nil
}

// MemoryModel selects how simultaneous edge liveness becomes a memory bound.
type MemoryModel string

const (
	// Pessimistic sums the weight of every live edge.
	Pessimistic MemoryModel = "pessimistic"
	// Optimistic lets the live outputs of one producer share a ceiling.
	Optimistic MemoryModel = "optimistic"
)

var validMemoryModels = map[MemoryModel]bool{
	Pessimistic: true,
	Optimistic:  true,
	"":          true, // empty defaults to pessimistic
}

// ParseMemoryModel validates a memory model token.
func ParseMemoryModel(s string) (MemoryModel, error) {
	mm := MemoryModel(s)
	if !validMemoryModels[mm] {
		return "", fmt.Errorf("%w %q; valid: pessimistic, optimistic", ErrUnknownMemoryModel, s)
	}
	if mm == "" {
		mm = Pessimistic
	}
	return mm, nil
}

// SolveConfig fully describes one solve. It is a value: explorers build a
// fresh one per step instead of mutating a shared record.
type SolveConfig struct {
	Lmax         *int   // nil: L is free and the horizon defaults to the operation count
	Mmax         *int64 // nil: M is free
	Alpha        float64
	Objective    Objective
	MemoryModel  MemoryModel
	ArtifactPath string        // empty: no LP artifact is written
	TimeLimit    time.Duration // zero: DefaultTimeLimit
}

// LatencyBound returns a pointer suitable for SolveConfig.Lmax.
func LatencyBound(l int) *int { return &l }

// MemoryBound returns a pointer suitable for SolveConfig.Mmax.
func MemoryBound(m int64) *int64 { return &m }

// Validate checks every token and bound before any model is built.
func (c SolveConfig) Validate() error {
	obj, err := ParseObjective(string(c.Objective))
	if err != nil {
		return err
	}
	if _, err := ParseMemoryModel(string(c.MemoryModel)); err != nil {
		return err
	}
	if c.Lmax != nil && *c.Lmax < 0 {
		return fmt.Errorf("%w: latency bound must be non-negative, got %d", ErrInvalidConfig, *c.Lmax)
	}
	if c.Mmax != nil && *c.Mmax < 0 {
		return fmt.Errorf("%w: memory bound must be non-negative, got %d", ErrInvalidConfig, *c.Mmax)
	}
	if obj == ObjectiveLinearization {
		if err := validateAlpha(c.Alpha); err != nil {
			return err
		}
	}
	if obj == ObjectiveFeasibility && (c.Lmax == nil || c.Mmax == nil) {
		return fmt.Errorf("%w: feasibility objective requires both latency and memory bounds", ErrInvalidConfig)
	}
	return nil
}

func validateAlpha(alpha float64) error {
	if math.IsNaN(alpha) || alpha < 0 || alpha > 1 {
		return fmt.Errorf("%w: alpha must be in [0,1], got %v", ErrInvalidConfig, alpha)
	}
	return nil
}

func (c SolveConfig) timeLimit() time.Duration {
	if c.TimeLimit == 0 {
		return DefaultTimeLimit
	}
	return c.TimeLimit
}
