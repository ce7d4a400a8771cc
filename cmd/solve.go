package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dfgsched/dfgsched/sched"
	"github.com/dfgsched/dfgsched/sched/graphio"
	"github.com/dfgsched/dfgsched/sched/ilp"
)

var (
	solveMemory       int64  // Memory constraint for latency minimization
	solveLatency      int    // Latency constraint for memory minimization
	solveArtifactDir  string // Where the mclm/lcmm LP files go
	solveShowSchedule bool   // Print t[o] and the per-slot memory profile
)

var solveCmd = &cobra.Command{
	Use:   "solve GRAPH",
	Short: "Run memory-constrained latency or latency-constrained memory minimization",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var (
			mmax *int64
			lmax *int
		)
		if cmd.Flags().Changed("memory") {
			mmax = sched.MemoryBound(solveMemory)
		}
		if cmd.Flags().Changed("latency") {
			lmax = sched.LatencyBound(solveLatency)
		}
		if mmax == nil && lmax == nil {
			logrus.Fatalf("Require at least one of --memory or --latency")
		}
		cfg := resolveConfig(cmd)
		req := solveRequest{
			GraphPath:    args[0],
			Memory:       mmax,
			Latency:      lmax,
			ArtifactDir:  solveArtifactDir,
			ShowSchedule: solveShowSchedule,
		}
		if _, err := runSolve(cmd.Context(), cfg, newSolver(cfg), req, os.Stdout); err != nil {
			logrus.Fatalf("Solve failed: %v", err)
		}
	},
}

// solveRequest is one invocation of the solve command.
type solveRequest struct {
	GraphPath    string
	Memory       *int64 // memory-constrained latency minimization when set
	Latency      *int   // latency-constrained memory minimization when set
	ArtifactDir  string // empty: no LP artifacts
	ShowSchedule bool
}

// runSolve runs the requested single-objective solves and prints each
// outcome. It returns the design points of the optimal ones.
func runSolve(ctx context.Context, cfg RunConfig, solver ilp.Solver, req solveRequest, out io.Writer) ([]sched.DesignPoint, error) {
	mm, err := sched.ParseMemoryModel(cfg.MemoryModel)
	if err != nil {
		return nil, err
	}
	g, err := graphio.Load(req.GraphPath)
	if err != nil {
		return nil, err
	}

	type job struct {
		label string
		tag   string
		cfg   sched.SolveConfig
	}
	var jobs []job
	if req.Memory != nil {
		jobs = append(jobs, job{"Latency", "mclm", sched.SolveConfig{Mmax: req.Memory, Objective: sched.ObjectiveLatency}})
	}
	if req.Latency != nil {
		jobs = append(jobs, job{"Memory", "lcmm", sched.SolveConfig{Lmax: req.Latency, Objective: sched.ObjectiveMemory}})
	}

	var points []sched.DesignPoint
	for _, j := range jobs {
		j.cfg.MemoryModel = mm
		j.cfg.TimeLimit = cfg.TimeLimit
		if req.ArtifactDir != "" {
			j.cfg.ArtifactPath = filepath.Join(req.ArtifactDir, fmt.Sprintf("%s_%s.lp", mm, j.tag))
		}
		r, err := sched.Solve(ctx, g, j.cfg, solver)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(out, "%s optimization final status: %s\n\tMemory: %d Latency: %d\n", j.label, r.Status, r.M, r.L)
		if r.Status == ilp.Optimal {
			points = append(points, r.Point())
		}
		if req.ShowSchedule && r.HasValues() {
			if err := printSchedule(out, g, r, mm); err != nil {
				return nil, err
			}
		}
	}
	return points, nil
}

func printSchedule(out io.Writer, g *sched.DependencyGraph, r sched.Result, mm sched.MemoryModel) error {
	profile, err := sched.MemoryProfile(g, r.Schedule, int(r.L), mm)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\tSchedule: %v\n\tMemory per slot: %v\n", r.Schedule, profile)
	return nil
}

func init() {
	solveCmd.Flags().Int64VarP(&solveMemory, "memory", "m", 0, "Memory constraint; enables memory-constrained latency minimization")
	solveCmd.Flags().IntVarP(&solveLatency, "latency", "l", 0, "Latency constraint; enables latency-constrained memory minimization")
	solveCmd.Flags().StringVar(&solveArtifactDir, "artifact-dir", ".", "Directory for the LP files (empty disables)")
	solveCmd.Flags().BoolVar(&solveShowSchedule, "schedule", false, "Print the schedule and its memory profile")
}
