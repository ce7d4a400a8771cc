// Package sched formulates latency/memory scheduling of dataflow graphs as
// an integer program and explores the trade-off between the two.
//
// # Reading Guide
//
//   - graph.go: DependencyGraph, the immutable weighted DAG being scheduled
//   - model.go: Build, which emits the schedule variables t, the liveness
//     indicators x/y/z and their linearization constraints
//   - memory.go: the pessimistic and optimistic memory accounting policies
//   - objective.go: the memory, latency and linearized objectives
//   - solve.go: Solve, one model handed to one backend
//   - pareto.go: Explorer, the sequence of solves that traces the front
//
// # Architecture
//
// Model construction never calls a solver directly. Solve hands the built
// ilp.Model to any ilp.Solver; backends live in sched/ilp/bnb (in-process,
// small graphs) and sched/ilp/cbc (external COIN-OR cbc executable).
// Every solve gets a fresh model and an explicit SolveConfig; the only state
// an exploration accumulates is its list of design points and an optional
// sched/trace record per solve.
package sched
