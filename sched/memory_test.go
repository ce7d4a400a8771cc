package sched

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfgsched/dfgsched/sched/internal/testutil"
)

func TestNewMemoryAccounting(t *testing.T) {
	acc, err := NewMemoryAccounting("")
	require.NoError(t, err)
	assert.Equal(t, Pessimistic, acc.Name())

	acc, err = NewMemoryAccounting(Optimistic)
	require.NoError(t, err)
	assert.Equal(t, Optimistic, acc.Name())

	_, err = NewMemoryAccounting("hopeful")
	assert.ErrorIs(t, err, ErrUnknownMemoryModel)
}

func TestPessimisticAccounting_OneRowPerSlot(t *testing.T) {
	g := fixtureGraph(t, testutil.Diamond)
	inst, err := Build(g, LatencyBound(3), nil)
	require.NoError(t, err)
	before := len(inst.Model.Constraints)

	PessimisticAccounting{}.Apply(inst)

	assert.Equal(t, before+3, len(inst.Model.Constraints))
	row := constraintByName(t, inst.Model, "mem_1")
	assert.Len(t, row.Expr.Terms, g.NumEdges()+1) // every z plus M
}

func TestOptimisticAccounting_CeilingGrid(t *testing.T) {
	// GIVEN the fan-out graph over two slots
	g := fixtureGraph(t, testutil.FanOut)
	inst, err := Build(g, LatencyBound(2), nil)
	require.NoError(t, err)
	vars, rows := inst.Model.NumVars(), len(inst.Model.Constraints)

	// WHEN the optimistic policy is applied
	OptimisticAccounting{}.Apply(inst)

	// THEN one ceiling per (operation, slot), one row per (edge, slot) and per slot
	assert.Equal(t, 3, inst.Ceiling.Rows())
	assert.Equal(t, 2, inst.Ceiling.Slots())
	assert.Equal(t, vars+3*2, inst.Model.NumVars())
	assert.Equal(t, rows+2*2+2, len(inst.Model.Constraints))

	names := varNames(inst.Model)
	ceil := constraintByName(t, inst.Model, "ceil_0_2_1")
	assert.Equal(t, float64(1), coef(ceil, names["z_0_2_1"]))
	assert.Equal(t, float64(-1), coef(ceil, names["m_0_1"]))
}

func TestMemoryProfile_DiamondASAP(t *testing.T) {
	g := fixtureGraph(t, testutil.Diamond)
	schedule := []int{0, 1, 1, 2}

	pess, err := MemoryProfile(g, schedule, 2, Pessimistic)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 2}, pess)

	// both outputs of operation 0 share one buffer in slot 0
	opt, err := MemoryProfile(g, schedule, 2, Optimistic)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, opt)
	assert.Equal(t, int64(2), PeakMemory(opt))
}

func TestMemoryProfile_Errors(t *testing.T) {
	g := fixtureGraph(t, testutil.TwoNode)
	_, err := MemoryProfile(g, []int{0}, 2, Pessimistic)
	assert.Error(t, err)
	_, err = MemoryProfile(g, []int{0, 1}, 2, "lazy")
	assert.ErrorIs(t, err, ErrUnknownMemoryModel)
}

func TestMemoryProfile_OptimisticNeverExceedsPessimistic(t *testing.T) {
	// GIVEN random valid schedules of random DAGs
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		n := 2 + rng.Intn(6)
		var edges []Edge
		for o := 0; o < n; o++ {
			for p := o + 1; p < n; p++ {
				if rng.Intn(3) == 0 {
					edges = append(edges, Edge{From: o, To: p, Weight: int64(rng.Intn(9))})
				}
			}
		}
		g, err := NewDependencyGraph(n, edges)
		require.NoError(t, err)

		// operations are labeled in topological order, so increasing starts are valid
		schedule := make([]int, n)
		for o := 1; o < n; o++ {
			schedule[o] = schedule[o-1] + rng.Intn(2)
			for _, e := range edges {
				if e.To == o && schedule[e.From] >= schedule[o] {
					schedule[o] = schedule[e.From] + 1
				}
			}
		}
		horizon := schedule[n-1] + 1

		pess, err := MemoryProfile(g, schedule, horizon, Pessimistic)
		require.NoError(t, err)
		opt, err := MemoryProfile(g, schedule, horizon, Optimistic)
		require.NoError(t, err)

		// THEN optimistic <= pessimistic slot by slot, with equality without fan-out
		for tau := range pess {
			assert.LessOrEqual(t, opt[tau], pess[tau], "trial %d slot %d", trial, tau)
			if g.MaxOutDegree() <= 1 {
				assert.Equal(t, pess[tau], opt[tau], "trial %d slot %d", trial, tau)
			}
		}
	}
}
