package ilp

import (
	"fmt"
	"math"
	"sort"
)

// Inf is the bound value used for variables without an upper (or lower) limit.
var Inf = math.Inf(1)

// VarKind distinguishes general integer variables from 0/1 variables.
type VarKind int

const (
	// Integer is a general integer variable with explicit bounds.
	Integer VarKind = iota
	// Binary is an integer variable restricted to {0, 1}.
	Binary
)

// Var is the index of a variable in its Model. Vars are only meaningful
// for the Model that created them.
type Var int

// Variable describes one decision variable.
type Variable struct {
	Name  string
	Kind  VarKind
	Lower float64 // -Inf for no lower bound
	Upper float64 // +Inf for no upper bound
}

// Term is coef * variable.
type Term struct {
	Var  Var
	Coef float64
}

// Expr is a linear expression: sum of terms plus a constant.
// Expr values are immutable; every method returns a new expression.
type Expr struct {
	Terms    []Term
	Constant float64
}

// Constant returns an expression with no variable terms.
func Constant(c float64) Expr {
	return Expr{Constant: c}
}

// Expr returns the expression 1*v.
func (v Var) Expr() Expr {
	return Expr{Terms: []Term{{Var: v, Coef: 1}}}
}

// Scaled returns the expression coef*v.
func (v Var) Scaled(coef float64) Expr {
	return Expr{Terms: []Term{{Var: v, Coef: coef}}}
}

// AddTerm returns e + coef*v.
func (e Expr) AddTerm(v Var, coef float64) Expr {
	terms := make([]Term, len(e.Terms), len(e.Terms)+1)
	copy(terms, e.Terms)
	return Expr{Terms: append(terms, Term{Var: v, Coef: coef}), Constant: e.Constant}
}

// AddConstant returns e + c.
func (e Expr) AddConstant(c float64) Expr {
	return Expr{Terms: e.Terms, Constant: e.Constant + c}
}

// Add returns e + o.
func (e Expr) Add(o Expr) Expr {
	terms := make([]Term, 0, len(e.Terms)+len(o.Terms))
	terms = append(terms, e.Terms...)
	terms = append(terms, o.Terms...)
	return Expr{Terms: terms, Constant: e.Constant + o.Constant}
}

// Sub returns e - o.
func (e Expr) Sub(o Expr) Expr {
	return e.Add(o.Scale(-1))
}

// Scale returns c*e.
func (e Expr) Scale(c float64) Expr {
	terms := make([]Term, len(e.Terms))
	for i, t := range e.Terms {
		terms[i] = Term{Var: t.Var, Coef: t.Coef * c}
	}
	return Expr{Terms: terms, Constant: e.Constant * c}
}

// IsConstant reports whether e has no variable terms after merging.
func (e Expr) IsConstant() bool {
	return len(e.Normalize().Terms) == 0
}

// Normalize merges duplicate variables, drops zero coefficients and sorts
// the terms by variable index.
func (e Expr) Normalize() Expr {
	if len(e.Terms) == 0 {
		return Expr{Constant: e.Constant}
	}
	coefs := make(map[Var]float64, len(e.Terms))
	for _, t := range e.Terms {
		coefs[t.Var] += t.Coef
	}
	terms := make([]Term, 0, len(coefs))
	for v, c := range coefs {
		if c != 0 {
			terms = append(terms, Term{Var: v, Coef: c})
		}
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].Var < terms[j].Var })
	return Expr{Terms: terms, Constant: e.Constant}
}

// Eval evaluates e against a full assignment indexed by Var.
func (e Expr) Eval(values []float64) float64 {
	sum := e.Constant
	for _, t := range e.Terms {
		sum += t.Coef * values[t.Var]
	}
	return sum
}

// Sum adds expressions together.
func Sum(exprs ...Expr) Expr {
	var out Expr
	for _, e := range exprs {
		out = out.Add(e)
	}
	return out
}

// Sense is the relation of a constraint.
type Sense int

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case GreaterEq:
		return ">="
	case Equal:
		return "="
	default:
		return fmt.Sprintf("Sense(%d)", int(s))
	}
}

// Constraint is Expr <sense> RHS, with all constants folded into RHS.
type Constraint struct {
	Name  string
	Expr  Expr // normalized, Constant is always zero
	Sense Sense
	RHS   float64
}

// Satisfied reports whether the constraint holds for values within tol.
func (c Constraint) Satisfied(values []float64, tol float64) bool {
	lhs := c.Expr.Eval(values)
	switch c.Sense {
	case LessEq:
		return lhs <= c.RHS+tol
	case GreaterEq:
		return lhs >= c.RHS-tol
	default:
		return math.Abs(lhs-c.RHS) <= tol
	}
}

// Model is a minimization problem over integer and binary variables.
// A Model is built once, handed to a Solver, then discarded.
type Model struct {
	Name        string
	Vars        []Variable
	Constraints []Constraint
	Objective   Expr // minimized
}

// NewModel returns an empty model.
func NewModel(name string) *Model {
	return &Model{Name: name}
}

// NewIntVar adds an integer variable with bounds [lo, hi]. Pass Inf for
// an unbounded upper limit.
func (m *Model) NewIntVar(name string, lo, hi float64) Var {
	m.Vars = append(m.Vars, Variable{Name: name, Kind: Integer, Lower: lo, Upper: hi})
	return Var(len(m.Vars) - 1)
}

// NewBoolVar adds a binary variable.
func (m *Model) NewBoolVar(name string) Var {
	m.Vars = append(m.Vars, Variable{Name: name, Kind: Binary, Lower: 0, Upper: 1})
	return Var(len(m.Vars) - 1)
}

// NumVars returns the number of declared variables.
func (m *Model) NumVars() int {
	return len(m.Vars)
}

// Variable returns the declaration of v.
func (m *Model) Variable(v Var) Variable {
	return m.Vars[v]
}

// Add records lhs <sense> rhs. Constants on both sides are folded into the
// right-hand side. Constraints without any variable term are still kept so
// that a constant contradiction reaches the solver as an infeasible model.
func (m *Model) Add(name string, lhs Expr, sense Sense, rhs Expr) {
	diff := lhs.Sub(rhs).Normalize()
	m.Constraints = append(m.Constraints, Constraint{
		Name:  name,
		Expr:  Expr{Terms: diff.Terms},
		Sense: sense,
		RHS:   -diff.Constant,
	})
}

// AddLessEq records lhs <= rhs.
func (m *Model) AddLessEq(name string, lhs, rhs Expr) {
	m.Add(name, lhs, LessEq, rhs)
}

// Minimize replaces the objective.
func (m *Model) Minimize(obj Expr) {
	m.Objective = obj.Normalize()
}
