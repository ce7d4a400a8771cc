package ilp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Status is the outcome reported by a Solver.
type Status int

const (
	// NotSolved means the solver stopped before finding any assignment,
	// typically because the time budget ran out.
	NotSolved Status = iota
	// Optimal means Values hold a proven optimal assignment.
	Optimal
	// Feasible means Values hold the best assignment found before the
	// time budget expired; optimality is not proven.
	Feasible
	// Infeasible means no assignment satisfies the constraints.
	Infeasible
	// Unbounded means the objective can decrease without limit.
	Unbounded
	// Undefined covers solver outcomes that fit none of the above.
	Undefined
)

var statusNames = map[Status]string{
	NotSolved:  "Not Solved",
	Optimal:    "Optimal",
	Feasible:   "Feasible",
	Infeasible: "Infeasible",
	Unbounded:  "Unbounded",
	Undefined:  "Undefined",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// HasValues reports whether a solution with this status carries an assignment.
func (s Status) HasValues() bool {
	return s == Optimal || s == Feasible
}

// MarshalText renders the status name, so reports and traces stay readable.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Solution is what a Solver returns for a Model.
type Solution struct {
	Status    Status
	Objective float64
	Values    []float64 // indexed by Var; nil unless Status.HasValues()
}

// Value returns the value of v, or 0 when the solution has no assignment.
func (s *Solution) Value(v Var) float64 {
	if s == nil || int(v) >= len(s.Values) {
		return 0
	}
	return s.Values[v]
}

// ValueOf evaluates e under the solution.
func (s *Solution) ValueOf(e Expr) float64 {
	if s == nil || s.Values == nil {
		return e.Constant
	}
	return e.Eval(s.Values)
}

// Options tune a single Solve call.
type Options struct {
	// TimeLimit is the wall-clock budget handed to the backend. Zero means
	// no limit beyond the context.
	TimeLimit time.Duration
	// ArtifactPath is the LP file already written for this model, if any.
	// Backends that read models from disk may reuse it.
	ArtifactPath string
}

// Solver is an external mixed-integer solver backend. Implementations must
// not retain the model after Solve returns.
type Solver interface {
	// Solve returns a Solution for m. An error means the backend itself
	// failed (missing binary, unreadable output); an infeasible or
	// timed-out model is reported through Solution.Status instead.
	Solve(ctx context.Context, m *Model, opts Options) (*Solution, error)
}

// Factory constructs a backend.
type Factory func() Solver

// ErrUnknownBackend is returned by New for unregistered backend names.
var ErrUnknownBackend = errors.New("unknown solver backend")

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a backend available by name. Backends call it from init().
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// New constructs the backend registered under name.
func New(name string) (Solver, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q; valid: %v", ErrUnknownBackend, name, Available())
	}
	return f(), nil
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
