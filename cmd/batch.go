package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dfgsched/dfgsched/sched/graphio"
	"github.com/dfgsched/dfgsched/sched/ilp"
)

var batchCmd = &cobra.Command{
	Use:   "batch DIR",
	Short: "Run the Pareto analysis for every *.edgelist benchmark in a directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := resolveConfig(cmd)
		failed, err := runBatch(cmd.Context(), cfg, newSolver(cfg), args[0], os.Stdout)
		if err != nil {
			logrus.Fatalf("Batch failed: %v", err)
		}
		if failed > 0 {
			logrus.Fatalf("%d benchmark runs failed", failed)
		}
	},
}

// runBatch explores every benchmark for every configured memory model and
// strategy. A failing run is logged and counted; the batch carries on.
func runBatch(ctx context.Context, cfg RunConfig, solver ilp.Solver, dir string, out io.Writer) (int, error) {
	paths, err := graphio.FindBenchmarks(dir)
	if err != nil {
		return 0, err
	}
	if len(paths) == 0 {
		return 0, fmt.Errorf("no *%s files in %s", graphio.EdgeListExt, dir)
	}
	logrus.Infof("Found %d benchmarks in %s", len(paths), dir)

	failed := 0
	for _, path := range paths {
		for _, mm := range cfg.Batch.MemoryModels {
			for _, st := range cfg.Batch.Strategies {
				if err := ctx.Err(); err != nil {
					return failed, err
				}
				rep, _, err := runPareto(ctx, cfg, solver, path, mm, st, out)
				if err != nil {
					logrus.Errorf("%s (%s, %s): %v", path, mm, st, err)
					failed++
					continue
				}
				logrus.Infof("%s (%s, %s): front %s", rep.Benchmark, mm, st, describeFront(rep.Front))
			}
		}
	}
	return failed, nil
}

func init() {
	registerParetoFlags(batchCmd.Flags())
	def := DefaultRunConfig().Batch
	batchCmd.Flags().StringSlice("memory-models", def.MemoryModels, "Memory models to run for each benchmark")
	batchCmd.Flags().StringSlice("pareto-types", def.Strategies, "Front tracing strategies to run for each benchmark")
}
