package sched

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dfgsched/dfgsched/sched/ilp"
	"github.com/dfgsched/dfgsched/sched/trace"
)

// DefaultSamples is the number of alpha values tried by the linearization strategy.
const DefaultSamples = 10

var (
	// ErrInfeasible means a solve the exploration depends on was infeasible.
	ErrInfeasible = errors.New("infeasible solve during exploration")
	// ErrNoSolution means a solve ended without any assignment (time limit,
	// unbounded or undefined status).
	ErrNoSolution = errors.New("solve returned no assignment")
	// ErrUnknownStrategy is a configuration error for the front tracing strategy.
	ErrUnknownStrategy = errors.New("unknown pareto strategy")
)

// DesignPoint is an achieved (memory, latency) pair.
type DesignPoint struct {
	M int64 `yaml:"memory" json:"memory"`
	L int64 `yaml:"latency" json:"latency"`
}

// Dominates reports whether p is no worse than q in both coordinates and
// strictly better in at least one.
func (p DesignPoint) Dominates(q DesignPoint) bool {
	return p.M <= q.M && p.L <= q.L && (p.M < q.M || p.L < q.L)
}

func (p DesignPoint) String() string {
	return fmt.Sprintf("(M=%d, L=%d)", p.M, p.L)
}

// ParetoFront returns the distinct non-dominated points sorted by latency.
func ParetoFront(points []DesignPoint) []DesignPoint {
	seen := make(map[DesignPoint]bool, len(points))
	front := make([]DesignPoint, 0, len(points))
	for i, p := range points {
		if seen[p] {
			continue
		}
		dominated := false
		for j, q := range points {
			if i != j && q.Dominates(p) {
				dominated = true
				break
			}
		}
		if !dominated {
			seen[p] = true
			front = append(front, p)
		}
	}
	sort.Slice(front, func(i, j int) bool {
		if front[i].L != front[j].L {
			return front[i].L < front[j].L
		}
		return front[i].M < front[j].M
	})
	return front
}

// Strategy selects how the interior of the front is traced.
type Strategy string

const (
	// StrategySweep minimizes memory at every latency bound in the span.
	StrategySweep Strategy = "sweep"
	// StrategyLinearization minimizes weighted sums for evenly spaced alphas.
	StrategyLinearization Strategy = "linearization"
)

var validStrategies = map[Strategy]bool{
	StrategySweep:         true,
	StrategyLinearization: true,
	"":                    true, // empty defaults to sweep
}

// ParseStrategy validates a strategy token.
func ParseStrategy(s string) (Strategy, error) {
	st := Strategy(s)
	if !validStrategies[st] {
		return "", fmt.Errorf("%w %q; valid: sweep, linearization", ErrUnknownStrategy, s)
	}
	if st == "" {
		st = StrategySweep
	}
	return st, nil
}

// ExplorerConfig configures a Pareto exploration.
type ExplorerConfig struct {
	MemoryModel MemoryModel
	Strategy    Strategy
	// Samples is the number of alphas for linearization; zero means DefaultSamples.
	Samples int
	// SkipInfeasible logs and skips infeasible interior points instead of
	// aborting. Bound discovery is always fatal on infeasibility.
	SkipInfeasible bool
	// ArtifactDir receives one LP file per solve; empty disables artifacts.
	ArtifactDir string
	// TimeLimit is handed to every solve; zero means DefaultTimeLimit.
	TimeLimit time.Duration
}

// Exploration is the outcome of Explore.
type Exploration struct {
	Points       []DesignPoint // every recorded point, in solve order
	Mmin         int64
	Lmin         int64
	MemorySpan   [2]int64 // [Mmin, memory at minimal latency]
	LatencySpan  [2]int64 // [Lmin, latency at minimal memory]
	Collapsed    bool     // one point dominates the whole search rectangle
	SkippedSteps []string
}

// Front returns the non-dominated points of the exploration.
func (x *Exploration) Front() []DesignPoint {
	return ParetoFront(x.Points)
}

// Explorer traces the latency/memory front of one graph by issuing
// parameterized solves strictly one after another.
type Explorer struct {
	graph  *DependencyGraph
	solver ilp.Solver
	cfg    ExplorerConfig
	trace  *trace.ExplorationTrace
	solves int
}

// NewExplorer validates cfg before any solve is issued.
func NewExplorer(g *DependencyGraph, solver ilp.Solver, cfg ExplorerConfig) (*Explorer, error) {
	mm, err := ParseMemoryModel(string(cfg.MemoryModel))
	if err != nil {
		return nil, err
	}
	st, err := ParseStrategy(string(cfg.Strategy))
	if err != nil {
		return nil, err
	}
	if cfg.Samples < 0 {
		return nil, fmt.Errorf("%w: samples must be non-negative, got %d", ErrInvalidConfig, cfg.Samples)
	}
	if cfg.Samples == 0 {
		cfg.Samples = DefaultSamples
	}
	cfg.MemoryModel, cfg.Strategy = mm, st
	return &Explorer{graph: g, solver: solver, cfg: cfg}, nil
}

// SetTrace attaches a trace that receives one record per solve.
func (e *Explorer) SetTrace(t *trace.ExplorationTrace) {
	e.trace = t
}

// Explore runs bound discovery, the two extrema and, unless the search
// rectangle is empty, the configured interior strategy.
func (e *Explorer) Explore(ctx context.Context) (*Exploration, error) {
	opcount := e.graph.OpCount()
	x := &Exploration{}

	logrus.Infof("Finding lower bound on memory usage")
	r, _, err := e.run(ctx, "memory-lower-bound", SolveConfig{
		Lmax:      LatencyBound(opcount),
		Objective: ObjectiveMemory,
	}, false)
	if err != nil {
		return nil, err
	}
	x.Points = append(x.Points, r.Point())
	x.Mmin = r.M

	logrus.Infof("Finding lower bound on latency")
	r, _, err = e.run(ctx, "latency-lower-bound", SolveConfig{Objective: ObjectiveLatency}, false)
	if err != nil {
		return nil, err
	}
	x.Points = append(x.Points, r.Point())
	x.Lmin = r.L

	logrus.Infof("Finding extrema on latency")
	atMinLatency, _, err := e.run(ctx, "extrema-latency", SolveConfig{
		Lmax:      LatencyBound(int(x.Lmin)),
		Objective: ObjectiveMemory,
	}, false)
	if err != nil {
		return nil, err
	}
	x.Points = append(x.Points, atMinLatency.Point())

	logrus.Infof("Finding extrema on memory")
	atMinMemory, _, err := e.run(ctx, "extrema-memory", SolveConfig{
		Mmax:      MemoryBound(x.Mmin),
		Objective: ObjectiveLatency,
	}, false)
	if err != nil {
		return nil, err
	}
	x.Points = append(x.Points, atMinMemory.Point())

	x.MemorySpan = [2]int64{x.Mmin, atMinLatency.M}
	x.LatencySpan = [2]int64{x.Lmin, atMinMemory.L}
	if x.MemorySpan[0] == x.MemorySpan[1] || x.LatencySpan[0] == x.LatencySpan[1] {
		x.Collapsed = true
		logrus.Infof("Search space is empty, found best possible solution of M=%d, L=%d", x.Mmin, x.Lmin)
		return x, nil
	}

	switch e.cfg.Strategy {
	case StrategySweep:
		logrus.Infof("Latency search space: [%d, %d)", x.LatencySpan[0], x.LatencySpan[1])
		for lmax := x.LatencySpan[0]; lmax < x.LatencySpan[1]; lmax++ {
			step := fmt.Sprintf("sweep-%d", lmax)
			r, ok, err := e.run(ctx, step, SolveConfig{
				Lmax:      LatencyBound(int(lmax)),
				Objective: ObjectiveMemory,
			}, true)
			if err != nil {
				return nil, err
			}
			if !ok {
				x.SkippedSteps = append(x.SkippedSteps, step)
				continue
			}
			x.Points = append(x.Points, r.Point())
		}
	case StrategyLinearization:
		logrus.Infof("Alpha search range: %d", e.cfg.Samples)
		for k := 0; k < e.cfg.Samples; k++ {
			alpha := float64(k) / float64(e.cfg.Samples)
			step := fmt.Sprintf("linearization-%d", k)
			r, ok, err := e.run(ctx, step, SolveConfig{
				Alpha:     alpha,
				Objective: ObjectiveLinearization,
			}, true)
			if err != nil {
				return nil, err
			}
			if !ok {
				x.SkippedSteps = append(x.SkippedSteps, step)
				continue
			}
			x.Points = append(x.Points, r.Point())
		}
	}
	return x, nil
}

// run issues one solve. ok is false only for a skipped interior point.
func (e *Explorer) run(ctx context.Context, step string, cfg SolveConfig, interior bool) (Result, bool, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, false, err
	}
	cfg.MemoryModel = e.cfg.MemoryModel
	cfg.TimeLimit = e.cfg.TimeLimit
	if e.cfg.ArtifactDir != "" {
		tag := fmt.Sprintf("pareto%02d", e.solves)
		cfg.ArtifactPath = filepath.Join(e.cfg.ArtifactDir, ArtifactName(tag, cfg.MemoryModel, cfg.Objective))
	}
	e.solves++

	r, err := Solve(ctx, e.graph, cfg, e.solver)
	if err != nil {
		return Result{}, false, fmt.Errorf("%s: %w", step, err)
	}

	record := trace.SolveRecord{
		Step:        step,
		Objective:   string(cfg.Objective),
		MemoryModel: string(cfg.MemoryModel),
		Lmax:        cfg.Lmax,
		Mmax:        cfg.Mmax,
		Status:      r.Status.String(),
		Memory:      r.M,
		Latency:     r.L,
		Artifact:    r.ArtifactPath,
		Elapsed:     r.Elapsed,
	}
	if cfg.Objective == ObjectiveLinearization {
		alpha := cfg.Alpha
		record.Alpha = &alpha
	}

	switch {
	case r.Status == ilp.Infeasible && interior && e.cfg.SkipInfeasible:
		record.Skipped = true
		e.trace.RecordSolve(record)
		logrus.Warnf("%s: infeasible interior point skipped", step)
		return r, false, nil
	case r.Status == ilp.Infeasible:
		e.trace.RecordSolve(record)
		return Result{}, false, fmt.Errorf("%s: %w", step, ErrInfeasible)
	case !r.HasValues():
		e.trace.RecordSolve(record)
		return Result{}, false, fmt.Errorf("%s: %w (status %s)", step, ErrNoSolution, r.Status)
	case r.Status == ilp.Feasible:
		logrus.Warnf("%s: time budget expired, using best assignment found", step)
	}
	e.trace.RecordSolve(record)
	logrus.Infof("%s: %s M=%d L=%d", step, r.Status, r.M, r.L)
	return r, true, nil
}
