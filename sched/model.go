package sched

import (
	"fmt"

	"github.com/dfgsched/dfgsched/sched/ilp"
)

// SlotGrid is a dense rows x slots block of variables, one row per
// operation (x, y, m) or per edge (z).
type SlotGrid struct {
	rows  int
	slots int
	vars  []ilp.Var
}

func newSlotGrid(rows, slots int, mk func(r, tau int) ilp.Var) SlotGrid {
	g := SlotGrid{rows: rows, slots: slots, vars: make([]ilp.Var, 0, rows*slots)}
	for r := 0; r < rows; r++ {
		for tau := 0; tau < slots; tau++ {
			g.vars = append(g.vars, mk(r, tau))
		}
	}
	return g
}

// At returns the variable of row r at time slot tau.
func (g SlotGrid) At(r, tau int) ilp.Var { return g.vars[r*g.slots+tau] }

// Rows returns the number of rows.
func (g SlotGrid) Rows() int { return g.rows }

// Slots returns the number of time slots.
func (g SlotGrid) Slots() int { return g.slots }

// Instance is one scheduling model together with handles to its variable
// families. It is built per solve and discarded afterwards.
type Instance struct {
	Model *ilp.Model
	Graph *DependencyGraph

	// Lmax is the horizon: t ranges over [0, Lmax] and slots over [0, Lmax).
	// It is also the big-M constant of the indicator constraints.
	Lmax int

	T []ilp.Var // t[o]
	X SlotGrid  // x[o,tau]: o dispatched by tau
	Y SlotGrid  // y[o,tau]: o not yet consumed at tau
	Z SlotGrid  // z[e,tau]: edge e live at tau, rows follow Graph.Edges()

	// Ceiling holds m[o,tau]; only populated by the optimistic model.
	Ceiling SlotGrid

	M ilp.Expr // peak memory: a free variable or the fixed bound
	L ilp.Expr // latency: a free variable or the fixed bound

	MemoryFixed  bool
	LatencyFixed bool
}

// Build constructs the variables and the precedence, latency, indicator and
// edge-liveness constraints of one scheduling instance. A nil lmax makes L
// free with the horizon defaulting to the operation count; a nil mmax makes
// M free. Build performs no feasibility check.
func Build(g *DependencyGraph, lmax *int, mmax *int64) (*Instance, error) {
	if lmax != nil && *lmax < 0 {
		return nil, fmt.Errorf("%w: latency bound must be non-negative, got %d", ErrInvalidConfig, *lmax)
	}
	if mmax != nil && *mmax < 0 {
		return nil, fmt.Errorf("%w: memory bound must be non-negative, got %d", ErrInvalidConfig, *mmax)
	}

	opcount := g.OpCount()
	horizon := opcount
	if lmax != nil {
		horizon = *lmax
	}
	m := ilp.NewModel("scheduling")
	inst := &Instance{Model: m, Graph: g, Lmax: horizon}

	inst.T = make([]ilp.Var, opcount)
	for o := range inst.T {
		inst.T[o] = m.NewIntVar(fmt.Sprintf("t_%d", o), 0, float64(horizon))
	}
	inst.X = newSlotGrid(opcount, horizon, func(o, tau int) ilp.Var {
		return m.NewBoolVar(fmt.Sprintf("x_%d_%d", o, tau))
	})
	inst.Y = newSlotGrid(opcount, horizon, func(o, tau int) ilp.Var {
		return m.NewBoolVar(fmt.Sprintf("y_%d_%d", o, tau))
	})
	inst.Z = newSlotGrid(g.NumEdges(), horizon, func(e, tau int) ilp.Var {
		edge := g.Edge(e)
		return m.NewBoolVar(fmt.Sprintf("z_%d_%d_%d", edge.From, edge.To, tau))
	})

	if mmax == nil {
		inst.M = m.NewIntVar("M", 0, ilp.Inf).Expr()
	} else {
		inst.M = ilp.Constant(float64(*mmax))
		inst.MemoryFixed = true
	}
	if lmax == nil {
		inst.L = m.NewIntVar("L", 0, ilp.Inf).Expr()
	} else {
		inst.L = ilp.Constant(float64(horizon))
		inst.LatencyFixed = true
	}

	// Precedence: o finishes at least one slot before p starts.
	for _, e := range g.edges {
		m.AddLessEq(fmt.Sprintf("prec_%d_%d", e.From, e.To),
			inst.T[e.From].Expr().Sub(inst.T[e.To].Expr()), ilp.Constant(-1))
	}
	for o, t := range inst.T {
		m.AddLessEq(fmt.Sprintf("lat_%d", o), t.Expr(), inst.L)
	}

	// Indicators, big-M = horizon:
	//   tau - t[o] + 1 <= Lmax*x[o,tau]   forces x=1 when tau >= t[o]
	//   t[o] - tau     <= Lmax*y[o,tau]   forces y=1 when tau <  t[o]
	bigM := float64(horizon)
	for o, t := range inst.T {
		for tau := 0; tau < horizon; tau++ {
			m.AddLessEq(fmt.Sprintf("dispatch_%d_%d", o, tau),
				ilp.Constant(float64(tau+1)).AddTerm(t, -1), inst.X.At(o, tau).Scaled(bigM))
			m.AddLessEq(fmt.Sprintf("pending_%d_%d", o, tau),
				t.Expr().AddConstant(-float64(tau)), inst.Y.At(o, tau).Scaled(bigM))
		}
	}

	// z[o,p,tau] = x[o,tau] AND y[p,tau]
	for ei, e := range g.edges {
		for tau := 0; tau < horizon; tau++ {
			z := inst.Z.At(ei, tau)
			x := inst.X.At(e.From, tau)
			y := inst.Y.At(e.To, tau)
			suffix := fmt.Sprintf("%d_%d_%d", e.From, e.To, tau)
			m.AddLessEq("live_"+suffix, x.Expr().AddTerm(y, 1).AddConstant(-1), z.Expr())
			m.AddLessEq("livex_"+suffix, z.Expr(), x.Expr())
			m.AddLessEq("livey_"+suffix, z.Expr(), y.Expr())
		}
	}
	return inst, nil
}

// Schedule extracts t[o] from a solution.
func (inst *Instance) Schedule(sol *ilp.Solution) []int {
	out := make([]int, len(inst.T))
	for o, t := range inst.T {
		out[o] = roundInt(sol.Value(t))
	}
	return out
}
