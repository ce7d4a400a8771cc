package sched

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfgsched/dfgsched/sched/ilp"
	"github.com/dfgsched/dfgsched/sched/ilp/bnb"
	"github.com/dfgsched/dfgsched/sched/internal/testutil"
	"github.com/dfgsched/dfgsched/sched/trace"
)

// scriptedReply is one canned answer: M and L are written into the M and
// L variables when the model declares them.
type scriptedReply struct {
	status ilp.Status
	m, l   float64
}

// scriptedCall records the shape of a model handed to the solver.
type scriptedCall struct {
	horizon   int
	freeM     bool
	freeL     bool
	objective map[string]float64
}

type scriptedSolver struct {
	replies []scriptedReply
	calls   []scriptedCall
}

func (s *scriptedSolver) Solve(_ context.Context, m *ilp.Model, _ ilp.Options) (*ilp.Solution, error) {
	call := scriptedCall{horizon: -1, objective: map[string]float64{}}
	values := make([]float64, m.NumVars())
	reply := scriptedReply{status: ilp.Undefined}
	if len(s.calls) < len(s.replies) {
		reply = s.replies[len(s.calls)]
	}
	for i, v := range m.Vars {
		switch v.Name {
		case "t_0":
			call.horizon = int(v.Upper)
		case "M":
			call.freeM = true
			values[i] = reply.m
		case "L":
			call.freeL = true
			values[i] = reply.l
		}
	}
	for _, term := range m.Objective.Terms {
		call.objective[m.Vars[term.Var].Name] = term.Coef
	}
	s.calls = append(s.calls, call)

	sol := &ilp.Solution{Status: reply.status}
	if reply.status.HasValues() {
		sol.Values = values
	}
	return sol, nil
}

func ok(m, l float64) scriptedReply { return scriptedReply{status: ilp.Optimal, m: m, l: l} }

// bounds scripts the four bound-discovery solves: Mmin, Lmin, memory at
// Lmin and latency at Mmin.
func bounds(mmin, lmin, memAtLmin, latAtMmin float64) []scriptedReply {
	return []scriptedReply{ok(mmin, 9), ok(99, lmin), ok(memAtLmin, 0), ok(0, latAtMmin)}
}

func explore(t *testing.T, f testutil.Fixture, s ilp.Solver, cfg ExplorerConfig) (*Exploration, error) {
	t.Helper()
	e, err := NewExplorer(fixtureGraph(t, f), s, cfg)
	require.NoError(t, err)
	return e.Explore(context.Background())
}

func TestExplore_BoundDiscoverySequence(t *testing.T) {
	// GIVEN a collapsed search space
	s := &scriptedSolver{replies: bounds(3, 2, 3, 4)}

	// WHEN exploring
	x, err := explore(t, testutil.Chain, s, ExplorerConfig{})
	require.NoError(t, err)

	// THEN exactly the four bound solves ran, in order
	require.Len(t, s.calls, 4)

	// memory at Lmax = opcount
	assert.Equal(t, 4, s.calls[0].horizon)
	assert.False(t, s.calls[0].freeL)
	assert.Contains(t, s.calls[0].objective, "M")
	// unbounded latency, horizon defaults to opcount
	assert.True(t, s.calls[1].freeL)
	assert.True(t, s.calls[1].freeM)
	assert.Contains(t, s.calls[1].objective, "L")
	// memory at Lmax = Lmin
	assert.Equal(t, 2, s.calls[2].horizon)
	assert.Contains(t, s.calls[2].objective, "M")
	// latency at Mmax = Mmin
	assert.False(t, s.calls[3].freeM)
	assert.Contains(t, s.calls[3].objective, "L")

	assert.True(t, x.Collapsed)
	assert.Equal(t, int64(3), x.Mmin)
	assert.Equal(t, int64(2), x.Lmin)
	assert.Equal(t, [2]int64{3, 3}, x.MemorySpan)
	assert.Equal(t, [2]int64{2, 4}, x.LatencySpan)
	assert.Len(t, x.Points, 4)
	assert.Equal(t, []DesignPoint{{M: 3, L: 2}}, x.Front())
}

func TestExplore_Sweep(t *testing.T) {
	// GIVEN Mmin=1, Lmin=1, M(Lmin)=3, L(Mmin)=4
	replies := append(bounds(1, 1, 3, 4), ok(3, 0), ok(2, 0), ok(2, 0))
	s := &scriptedSolver{replies: replies}

	x, err := explore(t, testutil.Chain, s, ExplorerConfig{Strategy: StrategySweep})
	require.NoError(t, err)

	// THEN lmax sweeps the half-open span [1, 4)
	require.Len(t, s.calls, 7)
	for i, want := range []int{1, 2, 3} {
		call := s.calls[4+i]
		assert.Equal(t, want, call.horizon)
		assert.False(t, call.freeL)
		assert.Contains(t, call.objective, "M")
	}
	assert.False(t, x.Collapsed)
	assert.Equal(t, [2]int64{1, 3}, x.MemorySpan)
	assert.Equal(t, [2]int64{1, 4}, x.LatencySpan)
	assert.Equal(t, []DesignPoint{{M: 3, L: 1}, {M: 2, L: 2}, {M: 1, L: 4}}, x.Front())
}

func TestExplore_Linearization(t *testing.T) {
	replies := bounds(1, 1, 3, 4)
	for k := 0; k < 4; k++ {
		replies = append(replies, ok(1, 4))
	}
	s := &scriptedSolver{replies: replies}

	_, err := explore(t, testutil.Chain, s, ExplorerConfig{Strategy: StrategyLinearization, Samples: 4})
	require.NoError(t, err)

	require.Len(t, s.calls, 8)
	alphas := []float64{0, 0.25, 0.5, 0.75}
	for i, alpha := range alphas {
		call := s.calls[4+i]
		assert.True(t, call.freeL)
		assert.True(t, call.freeM)
		assert.InDelta(t, 1-alpha, call.objective["M"], 1e-12)
		assert.InDelta(t, alpha, call.objective["L"], 1e-12)
	}
}

func TestExplore_LinearizationDefaultSamples(t *testing.T) {
	s := &scriptedSolver{replies: bounds(1, 1, 3, 4)}
	for k := 0; k < DefaultSamples; k++ {
		s.replies = append(s.replies, ok(2, 2))
	}
	_, err := explore(t, testutil.Chain, s, ExplorerConfig{Strategy: StrategyLinearization})
	require.NoError(t, err)
	assert.Len(t, s.calls, 4+DefaultSamples)
}

func TestExplore_InfeasibleBoundIsFatal(t *testing.T) {
	replies := bounds(1, 1, 3, 4)
	replies[2] = scriptedReply{status: ilp.Infeasible}
	s := &scriptedSolver{replies: replies}

	_, err := explore(t, testutil.Chain, s, ExplorerConfig{SkipInfeasible: true})

	assert.ErrorIs(t, err, ErrInfeasible)
	assert.Len(t, s.calls, 3)
}

func TestExplore_InfeasibleInteriorAbortsByDefault(t *testing.T) {
	replies := append(bounds(1, 1, 3, 3), ok(3, 0), scriptedReply{status: ilp.Infeasible})
	s := &scriptedSolver{replies: replies}

	_, err := explore(t, testutil.Chain, s, ExplorerConfig{})

	assert.ErrorIs(t, err, ErrInfeasible)
	assert.Contains(t, err.Error(), "sweep-2")
}

func TestExplore_SkipInfeasibleInterior(t *testing.T) {
	// GIVEN the second sweep point is infeasible and skipping is enabled
	replies := append(bounds(1, 1, 3, 3), ok(3, 0), scriptedReply{status: ilp.Infeasible})
	s := &scriptedSolver{replies: replies}
	e, err := NewExplorer(fixtureGraph(t, testutil.Chain), s, ExplorerConfig{SkipInfeasible: true})
	require.NoError(t, err)
	tr := trace.NewExplorationTrace(trace.TraceLevelSolves)
	e.SetTrace(tr)

	// WHEN exploring
	x, err := e.Explore(context.Background())

	// THEN the point is skipped and recorded as such
	require.NoError(t, err)
	assert.Equal(t, []string{"sweep-2"}, x.SkippedSteps)
	assert.Len(t, x.Points, 5)
	require.Len(t, tr.Solves, 6)
	assert.True(t, tr.Solves[5].Skipped)
	assert.Equal(t, "Infeasible", tr.Solves[5].Status)
	assert.Equal(t, "memory-lower-bound", tr.Solves[0].Step)
}

func TestExplore_NoAssignmentIsFatal(t *testing.T) {
	for _, st := range []ilp.Status{ilp.NotSolved, ilp.Unbounded, ilp.Undefined} {
		s := &scriptedSolver{replies: []scriptedReply{{status: st}}}
		_, err := explore(t, testutil.Chain, s, ExplorerConfig{SkipInfeasible: true})
		assert.ErrorIs(t, err, ErrNoSolution, st.String())
	}
}

func TestExplore_FeasibleStatusIsAccepted(t *testing.T) {
	replies := bounds(2, 2, 2, 2)
	replies[0].status = ilp.Feasible
	s := &scriptedSolver{replies: replies}

	x, err := explore(t, testutil.Chain, s, ExplorerConfig{})
	require.NoError(t, err)
	assert.True(t, x.Collapsed)
}

func TestExplore_WritesOneArtifactPerSolve(t *testing.T) {
	dir := t.TempDir()
	s := &scriptedSolver{replies: append(bounds(1, 1, 2, 2), ok(2, 0))}

	_, err := explore(t, testutil.TwoChains, s, ExplorerConfig{ArtifactDir: dir, MemoryModel: Optimistic})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
	_, err = os.Stat(dir + "/optimistic_memory_pareto00.lp")
	assert.NoError(t, err)
	_, err = os.Stat(dir + "/optimistic_latency_pareto03.lp")
	assert.NoError(t, err)
}

func TestExplore_CancelledContext(t *testing.T) {
	s := &scriptedSolver{}
	e, err := NewExplorer(fixtureGraph(t, testutil.Chain), s, ExplorerConfig{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.Explore(ctx)

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, s.calls)
}

func TestNewExplorer_RejectsBadConfig(t *testing.T) {
	g := fixtureGraph(t, testutil.Chain)
	_, err := NewExplorer(g, &scriptedSolver{}, ExplorerConfig{Strategy: "bisect"})
	assert.ErrorIs(t, err, ErrUnknownStrategy)
	_, err = NewExplorer(g, &scriptedSolver{}, ExplorerConfig{MemoryModel: "lazy"})
	assert.ErrorIs(t, err, ErrUnknownMemoryModel)
	_, err = NewExplorer(g, &scriptedSolver{}, ExplorerConfig{Samples: -1})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParetoFront(t *testing.T) {
	points := []DesignPoint{
		{M: 4, L: 1}, {M: 1, L: 5}, {M: 2, L: 3}, {M: 2, L: 3},
		{M: 3, L: 3}, {M: 1, L: 6}, {M: 4, L: 2},
	}
	assert.Equal(t, []DesignPoint{{M: 4, L: 1}, {M: 2, L: 3}, {M: 1, L: 5}}, ParetoFront(points))
	assert.Empty(t, ParetoFront(nil))
}

func TestDesignPoint_Dominates(t *testing.T) {
	p := DesignPoint{M: 2, L: 3}
	assert.True(t, p.Dominates(DesignPoint{M: 2, L: 4}))
	assert.True(t, p.Dominates(DesignPoint{M: 3, L: 3}))
	assert.False(t, p.Dominates(p))
	assert.False(t, p.Dominates(DesignPoint{M: 1, L: 9}))
	assert.Equal(t, "(M=2, L=3)", p.String())
}

func TestExplore_TwoChainsFront(t *testing.T) {
	// GIVEN two independent unit-weight chains: running both producers in
	// the same slot costs 2, serializing them costs a slot of latency
	for _, st := range []Strategy{StrategySweep, StrategyLinearization} {
		for _, mm := range memoryModels {
			t.Run(string(st)+"/"+string(mm), func(t *testing.T) {
				tr := trace.NewExplorationTrace(trace.TraceLevelSolves)
				e, err := NewExplorer(fixtureGraph(t, testutil.TwoChains), bnb.New(), ExplorerConfig{
					Strategy:    st,
					MemoryModel: mm,
				})
				require.NoError(t, err)
				e.SetTrace(tr)

				x, err := e.Explore(context.Background())

				require.NoError(t, err)
				assert.Equal(t, int64(1), x.Mmin)
				assert.Equal(t, int64(1), x.Lmin)
				assert.False(t, x.Collapsed)
				assert.Equal(t, []DesignPoint{{M: 2, L: 1}, {M: 1, L: 2}}, x.Front())
				assert.Equal(t, len(x.Points), len(tr.Solves))
			})
		}
	}
}

func TestExplore_DiamondCollapses(t *testing.T) {
	for _, mm := range memoryModels {
		e, err := NewExplorer(fixtureGraph(t, testutil.Diamond), bnb.New(), ExplorerConfig{MemoryModel: mm})
		require.NoError(t, err)
		x, err := e.Explore(context.Background())
		require.NoError(t, err)
		assert.True(t, x.Collapsed, mm)
		assert.Equal(t, []DesignPoint{{M: 2, L: 2}}, x.Front(), mm)
	}
}
