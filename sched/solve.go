package sched

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dfgsched/dfgsched/sched/ilp"
)

// Result is the outcome of one solve. M and L are meaningful only when
// HasValues reports true, except that fixed bounds are always echoed back.
type Result struct {
	Status       ilp.Status
	M            int64
	L            int64
	ArtifactPath string
	Schedule     []int // t[o]; nil without values
	Objective    float64
	Elapsed      time.Duration
}

// HasValues reports whether the solver returned an assignment.
func (r Result) HasValues() bool { return r.Status.HasValues() }

// Point returns the (M, L) design point of the result.
func (r Result) Point() DesignPoint { return DesignPoint{M: r.M, L: r.L} }

// ArtifactName is the LP file name for a solve; it encodes the memory
// model and the objective, plus a caller tag to keep files apart.
func ArtifactName(tag string, mm MemoryModel, obj Objective) string {
	if tag == "" {
		return fmt.Sprintf("%s_%s.lp", mm, obj)
	}
	return fmt.Sprintf("%s_%s_%s.lp", mm, obj, tag)
}

// Solve builds the model described by cfg, writes the LP artifact, hands
// the model to solver and extracts (status, M, L). Errors are configuration
// errors or backend failures; infeasibility is a status, not an error.
func Solve(ctx context.Context, g *DependencyGraph, cfg SolveConfig, solver ilp.Solver) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	accounting, err := NewMemoryAccounting(cfg.MemoryModel)
	if err != nil {
		return Result{}, err
	}
	inst, err := Build(g, cfg.Lmax, cfg.Mmax)
	if err != nil {
		return Result{}, err
	}
	accounting.Apply(inst)
	if err := ApplyObjective(inst, cfg.Objective, cfg.Alpha); err != nil {
		return Result{}, err
	}

	if cfg.ArtifactPath != "" {
		logrus.Debugf("Writing LP file to %s", cfg.ArtifactPath)
		if err := ilp.WriteLPFile(cfg.ArtifactPath, inst.Model); err != nil {
			return Result{}, fmt.Errorf("write model artifact: %w", err)
		}
	}

	logrus.Debugf("Solving ILP: %d variables, %d constraints", inst.Model.NumVars(), len(inst.Model.Constraints))
	start := time.Now()
	sol, err := solver.Solve(ctx, inst.Model, ilp.Options{
		TimeLimit:    cfg.timeLimit(),
		ArtifactPath: cfg.ArtifactPath,
	})
	if err != nil {
		return Result{}, fmt.Errorf("solve: %w", err)
	}
	res := Result{
		Status:       sol.Status,
		ArtifactPath: cfg.ArtifactPath,
		Elapsed:      time.Since(start),
	}
	logrus.Debugf("Status: %s", sol.Status)

	if inst.MemoryFixed {
		res.M = roundInt64(inst.M.Constant)
	}
	if inst.LatencyFixed {
		res.L = roundInt64(inst.L.Constant)
	}
	if sol.Status.HasValues() {
		res.M = roundInt64(sol.ValueOf(inst.M))
		res.L = roundInt64(sol.ValueOf(inst.L))
		res.Schedule = inst.Schedule(sol)
		res.Objective = sol.Objective
	}
	return res, nil
}

func roundInt64(f float64) int64 { return int64(math.Round(f)) }

func roundInt(f float64) int { return int(math.Round(f)) }
