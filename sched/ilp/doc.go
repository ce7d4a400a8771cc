// Package ilp holds the solver boundary of the scheduler: a small
// integer-programming model (variables, linear expressions, constraints and
// a minimized objective), a CPLEX LP writer for model artifacts, and the
// Solver interface that backends implement.
//
// Backends live in sub-packages and register themselves by name from an
// init() function:
//   - ilp/bnb: in-process branch-and-bound with bounds propagation, meant
//     for small all-integer models and for tests
//   - ilp/cbc: runs the COIN-OR cbc executable on the LP artifact
//
// Import a backend package (a blank import is enough) before calling New.
package ilp
