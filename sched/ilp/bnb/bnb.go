// Package bnb is a small in-process backend for all-integer models: a
// depth-first branch-and-bound that fixes variables one at a time in
// ascending value order and prunes with interval bounds propagation over
// every linear row, including the objective once an incumbent exists.
//
// It is exact on the models it finishes, but its search is exponential; it
// is intended for graphs with a handful of operations and for tests. Use an
// external backend such as ilp/cbc for real benchmarks.
package bnb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dfgsched/dfgsched/sched/ilp"
)

const (
	// eps absorbs floating point noise when rounding propagated bounds.
	eps = 1e-9
	// improveTol is the minimum objective improvement over the incumbent.
	improveTol = 1e-6
	// unboundedProbe caps how many values of a variable without an upper
	// bound are tried before the branch is abandoned as unresolved.
	unboundedProbe = 64
	// maxPropagationPasses bounds the fixpoint loop of a single node.
	maxPropagationPasses = 1000
	// checkEvery is the node interval between deadline checks.
	checkEvery = 256
)

// Solver is the branch-and-bound backend. The zero value is ready to use.
type Solver struct {
	// NodeLimit stops the search after this many nodes. Zero means no limit.
	NodeLimit int64
}

// New returns a Solver with no node limit.
func New() *Solver {
	return &Solver{}
}

// row is sum(coefs[k] * x[vars[k]]) <= rhs.
type row struct {
	vars  []int
	coefs []float64
	rhs   float64
}

type search struct {
	ctx      context.Context
	deadline time.Time
	limit    int64

	rows  []row
	obj   row
	objC  float64
	order []int

	nodes     int64
	stopped   bool
	truncated bool

	hasIncumbent bool
	bestObj      float64
	best         []float64
}

// Solve implements ilp.Solver.
func (s *Solver) Solve(ctx context.Context, m *ilp.Model, opts ilp.Options) (*ilp.Solution, error) {
	n := m.NumVars()
	lo := make([]float64, n)
	hi := make([]float64, n)
	for i, v := range m.Vars {
		if math.IsInf(v.Lower, -1) {
			return nil, fmt.Errorf("bnb: variable %s has no lower bound", v.Name)
		}
		lo[i] = math.Ceil(v.Lower - eps)
		hi[i] = v.Upper
		if !math.IsInf(hi[i], 1) {
			hi[i] = math.Floor(hi[i] + eps)
		}
	}

	sr := &search{
		ctx:   ctx,
		limit: s.NodeLimit,
		rows:  compileRows(m.Constraints),
		objC:  m.Objective.Constant,
	}
	if opts.TimeLimit > 0 {
		sr.deadline = time.Now().Add(opts.TimeLimit)
	}
	sr.obj = row{rhs: math.Inf(1)}
	inObjective := make([]bool, n)
	for _, t := range m.Objective.Terms {
		sr.obj.vars = append(sr.obj.vars, int(t.Var))
		sr.obj.coefs = append(sr.obj.coefs, t.Coef)
		inObjective[t.Var] = true
	}
	// Objective variables go last so they settle at the bound implied by
	// the rest of the assignment.
	for i := 0; i < n; i++ {
		if !inObjective[i] {
			sr.order = append(sr.order, i)
		}
	}
	for i := 0; i < n; i++ {
		if inObjective[i] {
			sr.order = append(sr.order, i)
		}
	}

	start := time.Now()
	sr.dfs(lo, hi)
	if err := ctx.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}

	sol := &ilp.Solution{Status: sr.status()}
	if sr.hasIncumbent {
		sol.Values = sr.best
		sol.Objective = sr.bestObj
	}
	logrus.Debugf("bnb: %s after %d nodes in %v (%d vars, %d rows)",
		sol.Status, sr.nodes, time.Since(start), n, len(sr.rows))
	return sol, nil
}

func compileRows(constraints []ilp.Constraint) []row {
	rows := make([]row, 0, len(constraints))
	for _, c := range constraints {
		r := row{rhs: c.RHS}
		for _, t := range c.Expr.Terms {
			r.vars = append(r.vars, int(t.Var))
			r.coefs = append(r.coefs, t.Coef)
		}
		switch c.Sense {
		case ilp.LessEq:
			rows = append(rows, r)
		case ilp.GreaterEq:
			rows = append(rows, r.negated())
		case ilp.Equal:
			rows = append(rows, r, r.negated())
		}
	}
	return rows
}

func (r row) negated() row {
	out := row{vars: r.vars, coefs: make([]float64, len(r.coefs)), rhs: -r.rhs}
	for k, c := range r.coefs {
		out.coefs[k] = -c
	}
	return out
}

func (sr *search) status() ilp.Status {
	incomplete := sr.stopped || sr.truncated
	switch {
	case sr.hasIncumbent && incomplete:
		return ilp.Feasible
	case sr.hasIncumbent:
		return ilp.Optimal
	case incomplete:
		return ilp.NotSolved
	default:
		return ilp.Infeasible
	}
}

func (sr *search) shouldStop() bool {
	if sr.stopped {
		return true
	}
	sr.nodes++
	if sr.limit > 0 && sr.nodes > sr.limit {
		sr.stopped = true
	} else if sr.nodes%checkEvery == 0 {
		if sr.ctx.Err() != nil || (!sr.deadline.IsZero() && time.Now().After(sr.deadline)) {
			sr.stopped = true
		}
	}
	return sr.stopped
}

func (sr *search) dfs(lo, hi []float64) {
	if sr.shouldStop() || !sr.propagate(lo, hi) {
		return
	}
	j := sr.pick(lo, hi)
	if j < 0 {
		sr.record(lo)
		return
	}
	first := lo[j]
	for v := lo[j]; v <= hi[j]; {
		if math.IsInf(hi[j], 1) && v-first >= unboundedProbe {
			sr.truncated = true
			return
		}
		l := append([]float64(nil), lo...)
		h := append([]float64(nil), hi...)
		l[j], h[j] = v, v
		sr.dfs(l, h)
		if sr.stopped {
			return
		}
		// A new incumbent tightens the objective row; shrink what is left.
		if sr.hasIncumbent && !sr.propagate(lo, hi) {
			return
		}
		v = math.Max(v+1, lo[j])
	}
}

func (sr *search) pick(lo, hi []float64) int {
	for _, j := range sr.order {
		if lo[j] < hi[j] {
			return j
		}
	}
	return -1
}

func (sr *search) record(values []float64) {
	for _, r := range sr.rows {
		if r.activity(values) > r.rhs+eps {
			return
		}
	}
	obj := sr.objC + sr.obj.activity(values)
	if sr.hasIncumbent && obj > sr.bestObj-improveTol {
		return
	}
	sr.hasIncumbent = true
	sr.bestObj = obj
	sr.best = append(sr.best[:0:0], values...)
	sr.obj.rhs = sr.bestObj - sr.objC - improveTol
}

func (r row) activity(values []float64) float64 {
	sum := 0.0
	for k, j := range r.vars {
		sum += r.coefs[k] * values[j]
	}
	return sum
}

// propagate tightens lo/hi in place until no row changes them. It reports
// false when some row cannot be satisfied within the bounds.
func (sr *search) propagate(lo, hi []float64) bool {
	for pass := 0; pass < maxPropagationPasses; pass++ {
		changed := false
		for i := range sr.rows {
			ok, ch := sr.rows[i].tighten(lo, hi)
			if !ok {
				return false
			}
			changed = changed || ch
		}
		if sr.hasIncumbent {
			ok, ch := sr.obj.tighten(lo, hi)
			if !ok {
				return false
			}
			changed = changed || ch
		}
		if !changed {
			return true
		}
	}
	return true
}

func (r row) tighten(lo, hi []float64) (ok, changed bool) {
	minAct := 0.0
	infCount, infAt := 0, -1
	for k, j := range r.vars {
		b := lo[j]
		if r.coefs[k] < 0 {
			b = hi[j]
		}
		if math.IsInf(b, 0) {
			infCount++
			infAt = k
			continue
		}
		minAct += r.coefs[k] * b
	}
	if infCount == 0 && minAct > r.rhs+eps {
		return false, false
	}
	if infCount > 1 {
		return true, false
	}
	for k, j := range r.vars {
		a := r.coefs[k]
		rest := minAct
		if infCount == 1 {
			if k != infAt {
				continue
			}
		} else if a > 0 {
			rest -= a * lo[j]
		} else {
			rest -= a * hi[j]
		}
		limit := (r.rhs - rest) / a
		if a > 0 {
			if nh := math.Floor(limit + eps); nh < hi[j] {
				hi[j] = nh
				changed = true
			}
		} else {
			if nl := math.Ceil(limit - eps); nl > lo[j] {
				lo[j] = nl
				changed = true
			}
		}
		if lo[j] > hi[j] {
			return false, changed
		}
	}
	return true, changed
}
