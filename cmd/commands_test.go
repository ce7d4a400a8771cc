package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfgsched/dfgsched/sched"
	"github.com/dfgsched/dfgsched/sched/graphgen"
	"github.com/dfgsched/dfgsched/sched/graphio"
	"github.com/dfgsched/dfgsched/sched/ilp/bnb"
)

const (
	twoNodeEdgeList   = "0 1 5\n"
	twoChainsEdgeList = "# two independent producers\n0 1 1\n2 3 1\n"
)

func testConfig(t *testing.T) RunConfig {
	t.Helper()
	cfg := DefaultRunConfig()
	cfg.Solver = "bnb"
	cfg.Pareto.OutputDir = filepath.Join(t.TempDir(), "results")
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestRunSolve_BothObjectives(t *testing.T) {
	// GIVEN the two-node graph with a weight-5 edge
	dir := t.TempDir()
	graph := writeFile(t, dir, "pair.edgelist", twoNodeEdgeList)
	var out bytes.Buffer

	// WHEN both the memory and the latency constrained solves run
	points, err := runSolve(context.Background(), testConfig(t), bnb.New(), solveRequest{
		GraphPath:    graph,
		Memory:       sched.MemoryBound(5),
		Latency:      sched.LatencyBound(1),
		ArtifactDir:  dir,
		ShowSchedule: true,
	}, &out)

	// THEN both are optimal at (M=5, L=1) and leave their LP files behind
	require.NoError(t, err)
	assert.Equal(t, []sched.DesignPoint{{M: 5, L: 1}, {M: 5, L: 1}}, points)
	assert.Contains(t, out.String(), "Latency optimization final status: Optimal")
	assert.Contains(t, out.String(), "Memory optimization final status: Optimal")
	assert.Contains(t, out.String(), "Schedule: [0 1]")
	assert.Contains(t, out.String(), "Memory per slot: [5]")
	for _, name := range []string{"pessimistic_mclm.lp", "pessimistic_lcmm.lp"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestRunSolve_InfeasibleIsReportedNotFailed(t *testing.T) {
	graph := writeFile(t, t.TempDir(), "pair.edgelist", twoNodeEdgeList)
	var out bytes.Buffer

	points, err := runSolve(context.Background(), testConfig(t), bnb.New(), solveRequest{
		GraphPath: graph,
		Latency:   sched.LatencyBound(0),
	}, &out)

	require.NoError(t, err)
	assert.Empty(t, points)
	assert.Contains(t, out.String(), "Memory optimization final status: Infeasible")
}

func TestRunSolve_MissingGraph(t *testing.T) {
	_, err := runSolve(context.Background(), testConfig(t), bnb.New(), solveRequest{
		GraphPath: filepath.Join(t.TempDir(), "absent.edgelist"),
		Latency:   sched.LatencyBound(1),
	}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRunPareto_WritesReport(t *testing.T) {
	for _, st := range []string{"sweep", "linearization"} {
		t.Run(st, func(t *testing.T) {
			graph := writeFile(t, t.TempDir(), "chains.edgelist", twoChainsEdgeList)
			cfg := testConfig(t)
			cfg.Pareto.Trace = "solves"
			var out bytes.Buffer

			rep, path, err := runPareto(context.Background(), cfg, bnb.New(), graph, "pessimistic", st, &out)

			require.NoError(t, err)
			assert.Equal(t, filepath.Join(cfg.Pareto.OutputDir, "chains_pessimistic_pareto_"+st+".yaml"), path)
			assert.Equal(t, []sched.DesignPoint{{M: 2, L: 1}, {M: 1, L: 2}}, rep.Front)
			require.NotNil(t, rep.Summary)
			assert.Equal(t, len(rep.Points), rep.Summary.TotalSolves)
			_, err = os.Stat(path)
			assert.NoError(t, err)
			assert.Contains(t, out.String(), "chains (pessimistic, "+st+")")
		})
	}
}

func TestRunPareto_JSONAndArtifacts(t *testing.T) {
	dir := t.TempDir()
	graph := writeFile(t, dir, "pair.edgelist", twoNodeEdgeList)
	cfg := testConfig(t)
	cfg.Pareto.Format = "json"
	cfg.Pareto.ArtifactDir = filepath.Join(dir, "lp")

	rep, path, err := runPareto(context.Background(), cfg, bnb.New(), graph, "optimistic", "sweep", &bytes.Buffer{})

	require.NoError(t, err)
	assert.True(t, rep.Collapsed)
	assert.Equal(t, ".json", filepath.Ext(path))
	entries, err := os.ReadDir(filepath.Join(dir, "lp", "pair"))
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestRunPareto_BadTokens(t *testing.T) {
	graph := writeFile(t, t.TempDir(), "pair.edgelist", twoNodeEdgeList)
	_, _, err := runPareto(context.Background(), testConfig(t), bnb.New(), graph, "lazy", "sweep", &bytes.Buffer{})
	assert.ErrorIs(t, err, sched.ErrUnknownMemoryModel)
	_, _, err = runPareto(context.Background(), testConfig(t), bnb.New(), graph, "optimistic", "bisect", &bytes.Buffer{})
	assert.ErrorIs(t, err, sched.ErrUnknownStrategy)
}

func TestRunBatch_EveryCombination(t *testing.T) {
	// GIVEN two valid benchmarks, one broken one, and a file to ignore
	dir := t.TempDir()
	writeFile(t, dir, "pair.edgelist", twoNodeEdgeList)
	writeFile(t, dir, "chains.edgelist", twoChainsEdgeList)
	writeFile(t, dir, "broken.edgelist", "0 2 1\n")
	writeFile(t, dir, "README.md", "not a graph")
	cfg := testConfig(t)
	cfg.Batch.MemoryModels = []string{"pessimistic", "optimistic"}
	cfg.Batch.Strategies = []string{"sweep"}

	// WHEN the batch runs
	failed, err := runBatch(context.Background(), cfg, bnb.New(), dir, &bytes.Buffer{})

	// THEN the broken benchmark fails per combination and the rest produce reports
	require.NoError(t, err)
	assert.Equal(t, 2, failed)
	reports, err := filepath.Glob(filepath.Join(cfg.Pareto.OutputDir, "*.yaml"))
	require.NoError(t, err)
	assert.Len(t, reports, 4)
}

func TestRunBatch_NoBenchmarks(t *testing.T) {
	_, err := runBatch(context.Background(), testConfig(t), bnb.New(), t.TempDir(), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRunGenerate(t *testing.T) {
	dir := t.TempDir()
	cfg := graphgen.Config{Ops: 6, Layers: 3, EdgeProb: 0.5, MinWeight: 1, MaxWeight: 4, Seed: 9}

	paths, err := runGenerate(cfg, 3, dir, "rand", "edgelist")
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "rand000.edgelist"),
		filepath.Join(dir, "rand001.edgelist"),
		filepath.Join(dir, "rand002.edgelist"),
	}, paths)

	for i, p := range paths {
		g, err := graphio.Load(p)
		require.NoError(t, err)
		c := cfg
		c.Seed = cfg.Seed + int64(i)
		want, err := graphgen.Generate(c)
		require.NoError(t, err)
		assert.Equal(t, want.Edges(), g.Edges())
	}

	paths, err = runGenerate(cfg, 1, dir, "rand", "yaml")
	require.NoError(t, err)
	assert.Equal(t, ".yaml", filepath.Ext(paths[0]))

	_, err = runGenerate(cfg, 1, dir, "rand", "dot")
	assert.Error(t, err)
	_, err = runGenerate(cfg, 0, dir, "rand", "edgelist")
	assert.Error(t, err)
}

func TestRootCommand_Wiring(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"solve", "pareto", "batch", "generate"} {
		assert.True(t, names[want], want)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("memory-model"))
	assert.NotNil(t, paretoCmd.Flags().Lookup("pareto-type"))
	assert.NotNil(t, batchCmd.Flags().Lookup("memory-models"))
}
