package sched

import (
	"fmt"

	"github.com/dfgsched/dfgsched/sched/ilp"
)

// MemoryAccounting adds the constraints that turn edge liveness z into a
// bound on M.
type MemoryAccounting interface {
	Name() MemoryModel
	Apply(inst *Instance)
}

// NewMemoryAccounting returns the policy for a memory model token.
func NewMemoryAccounting(model MemoryModel) (MemoryAccounting, error) {
	mm, err := ParseMemoryModel(string(model))
	if err != nil {
		return nil, err
	}
	switch mm {
	case Optimistic:
		return OptimisticAccounting{}, nil
	default:
		return PessimisticAccounting{}, nil
	}
}

// PessimisticAccounting charges every live edge in full.
type PessimisticAccounting struct{}

func (PessimisticAccounting) Name() MemoryModel { return Pessimistic }

// Apply adds sum_e w_e*z[e,tau] <= M for every slot.
func (PessimisticAccounting) Apply(inst *Instance) {
	edges := inst.Graph.edges
	for tau := 0; tau < inst.Lmax; tau++ {
		var sum ilp.Expr
		for ei, e := range edges {
			sum = sum.AddTerm(inst.Z.At(ei, tau), float64(e.Weight))
		}
		inst.Model.AddLessEq(fmt.Sprintf("mem_%d", tau), sum, inst.M)
	}
}

// OptimisticAccounting lets all live outputs of one producer share a single
// ceiling m[o,tau] sized by the heaviest of them.
type OptimisticAccounting struct{}

func (OptimisticAccounting) Name() MemoryModel { return Optimistic }

// Apply adds w_e*z[e,tau] <= m[o,tau] for every edge e leaving o, and
// sum_o m[o,tau] <= M for every slot.
func (OptimisticAccounting) Apply(inst *Instance) {
	m := inst.Model
	opcount := inst.Graph.OpCount()
	inst.Ceiling = newSlotGrid(opcount, inst.Lmax, func(o, tau int) ilp.Var {
		return m.NewIntVar(fmt.Sprintf("m_%d_%d", o, tau), 0, ilp.Inf)
	})
	for ei, e := range inst.Graph.edges {
		for tau := 0; tau < inst.Lmax; tau++ {
			m.AddLessEq(fmt.Sprintf("ceil_%d_%d_%d", e.From, e.To, tau),
				inst.Z.At(ei, tau).Scaled(float64(e.Weight)), inst.Ceiling.At(e.From, tau).Expr())
		}
	}
	for tau := 0; tau < inst.Lmax; tau++ {
		var sum ilp.Expr
		for o := 0; o < opcount; o++ {
			sum = sum.AddTerm(inst.Ceiling.At(o, tau), 1)
		}
		m.AddLessEq(fmt.Sprintf("mem_%d", tau), sum, inst.M)
	}
}

// MemoryProfile evaluates a concrete schedule: entry tau is the memory in
// use during slot tau under the given model, for slots [0, horizon). An
// edge (o,p) is live at tau when schedule[o] <= tau < schedule[p].
func MemoryProfile(g *DependencyGraph, schedule []int, horizon int, model MemoryModel) ([]int64, error) {
	if len(schedule) != g.OpCount() {
		return nil, fmt.Errorf("schedule has %d entries, graph has %d operations", len(schedule), g.OpCount())
	}
	mm, err := ParseMemoryModel(string(model))
	if err != nil {
		return nil, err
	}
	profile := make([]int64, horizon)
	ceiling := make([]int64, g.OpCount())
	for tau := 0; tau < horizon; tau++ {
		for i := range ceiling {
			ceiling[i] = 0
		}
		for _, e := range g.edges {
			if schedule[e.From] > tau || tau >= schedule[e.To] {
				continue
			}
			if mm == Pessimistic {
				profile[tau] += e.Weight
			} else if e.Weight > ceiling[e.From] {
				ceiling[e.From] = e.Weight
			}
		}
		if mm == Optimistic {
			for _, c := range ceiling {
				profile[tau] += c
			}
		}
	}
	return profile, nil
}

// PeakMemory returns the largest entry of a profile.
func PeakMemory(profile []int64) int64 {
	var peak int64
	for _, v := range profile {
		if v > peak {
			peak = v
		}
	}
	return peak
}
