package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dfgsched/dfgsched/sched"
	"github.com/dfgsched/dfgsched/sched/graphio"
	"github.com/dfgsched/dfgsched/sched/ilp"
	"github.com/dfgsched/dfgsched/sched/report"
	"github.com/dfgsched/dfgsched/sched/trace"
)

var paretoCmd = &cobra.Command{
	Use:   "pareto GRAPH",
	Short: "Trace the latency/memory Pareto front of a graph",
	Long: "Find the memory and latency lower bounds, the two extrema, then trace the interior of the " +
		"front by sweeping the latency bound or by weighted-sum linearization. The front is written " +
		"as a report to --output-dir and printed as a table.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := resolveConfig(cmd)
		solver := newSolver(cfg)
		if _, _, err := runPareto(cmd.Context(), cfg, solver, args[0], cfg.MemoryModel, cfg.Pareto.Strategy, os.Stdout); err != nil {
			logrus.Fatalf("Pareto analysis of %s failed: %v", args[0], err)
		}
	},
}

// runPareto explores one graph, writes its report and prints the table.
// It returns the report and the path it was written to.
func runPareto(ctx context.Context, cfg RunConfig, solver ilp.Solver, graphPath, memoryModel, strategy string, out io.Writer) (*report.FrontReport, string, error) {
	mm, err := sched.ParseMemoryModel(memoryModel)
	if err != nil {
		return nil, "", err
	}
	st, err := sched.ParseStrategy(strategy)
	if err != nil {
		return nil, "", err
	}
	g, err := graphio.Load(graphPath)
	if err != nil {
		return nil, "", err
	}
	bench := graphio.BenchmarkName(graphPath)
	logrus.Infof("Performing pareto front analysis of %s (%d operations, %d edges, %s, %s)",
		bench, g.OpCount(), g.NumEdges(), mm, st)

	xcfg := cfg.explorerConfig(mm, st)
	if xcfg.ArtifactDir != "" {
		xcfg.ArtifactDir = filepath.Join(xcfg.ArtifactDir, bench)
	}
	explorer, err := sched.NewExplorer(g, solver, xcfg)
	if err != nil {
		return nil, "", err
	}
	tr := trace.NewExplorationTrace(trace.TraceLevel(cfg.Pareto.Trace))
	explorer.SetTrace(tr)

	x, err := explorer.Explore(ctx)
	if err != nil {
		return nil, "", err
	}

	rep := report.New(report.Meta{Benchmark: bench, MemoryModel: mm, Strategy: st, Solver: cfg.Solver}, g, x, tr)
	name := report.FileName(bench, mm, st)
	if cfg.Pareto.Format == "json" {
		name = strings.TrimSuffix(name, ".yaml") + ".json"
	}
	path := filepath.Join(cfg.Pareto.OutputDir, name)
	if err := rep.WriteFile(path); err != nil {
		return nil, "", err
	}
	logrus.Infof("Outputting pareto curve to %s", path)

	report.RenderTable(out, rep, report.NewPalette(isTerminal(out)))
	return rep, path, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && report.IsTerminal(f)
}

func init() {
	registerParetoFlags(paretoCmd.Flags())
	paretoCmd.Flags().StringP("pareto-type", "p", DefaultRunConfig().Pareto.Strategy, "Front tracing strategy (sweep, linearization)")
}

// describeFront is a one-line summary used by batch progress logs.
func describeFront(front []sched.DesignPoint) string {
	parts := make([]string, len(front))
	for i, p := range front {
		parts[i] = p.String()
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, " "))
}
