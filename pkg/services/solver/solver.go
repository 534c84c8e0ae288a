// Package solver provides a small dense linear-programming solver with
// slack and dual-value extraction, plus a branch-and-bound wrapper for
// models with binary decision variables.
//
// Problems are stated in minimization form. Builders that maximize negate
// their objective coefficients before calling Solve, which keeps the
// reported dual values on the same convention as the minimization
// marginals the reporting layer expects (non-positive for binding
// upper-bound constraints).
package solver

import (
	"context"
	"fmt"
	"math"
)

// Status describes the outcome of a solve.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
	StatusBudgetExceeded
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusBudgetExceeded:
		return "budget exceeded"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Constraint is a named linear row. For Problem.Constraints the row reads
// Coeffs·x <= Bound; for Problem.Equalities it reads Coeffs·x == Bound.
type Constraint struct {
	Name   string
	Coeffs []float64
	Bound  float64
}

// Bounds limits a single decision variable. Upper may be math.Inf(1).
type Bounds struct {
	Lower float64
	Upper float64
}

// NonNegative is the default variable domain [0, +inf).
func NonNegative() Bounds { return Bounds{Lower: 0, Upper: math.Inf(1)} }

// Interval builds a [lo, hi] variable domain.
func Interval(lo, hi float64) Bounds { return Bounds{Lower: lo, Upper: hi} }

// Problem is a linear program in minimization form.
type Problem struct {
	Objective   []float64
	Constraints []Constraint
	Equalities  []Constraint
	Bounds      []Bounds
}

// Result carries the decision vector together with per-constraint slacks
// and dual values for Problem.Constraints, in declaration order. Dual
// values are only populated for continuous solves; SolveMILP leaves them
// empty since duals are not well defined for integer programs.
type Result struct {
	Status     Status
	X          []float64
	Objective  float64
	Slacks     []float64
	Duals      []float64
	Iterations int
}

func (p *Problem) validate() error {
	n := len(p.Objective)
	if n == 0 {
		return fmt.Errorf("solver: empty objective")
	}
	if len(p.Bounds) != n {
		return fmt.Errorf("solver: %d bounds for %d variables", len(p.Bounds), n)
	}
	for _, c := range p.Constraints {
		if len(c.Coeffs) != n {
			return fmt.Errorf("solver: constraint %q has %d coefficients, want %d", c.Name, len(c.Coeffs), n)
		}
	}
	for _, c := range p.Equalities {
		if len(c.Coeffs) != n {
			return fmt.Errorf("solver: equality %q has %d coefficients, want %d", c.Name, len(c.Coeffs), n)
		}
	}
	for i, b := range p.Bounds {
		if b.Upper < b.Lower {
			return fmt.Errorf("solver: variable %d has upper bound %v below lower bound %v", i, b.Upper, b.Lower)
		}
	}
	return nil
}

// Solve runs the two-phase simplex on the problem. The context is checked
// periodically; expiry yields StatusBudgetExceeded rather than an error so
// callers can convert it into their structured error shape.
func Solve(ctx context.Context, p Problem) (Result, error) {
	if err := p.validate(); err != nil {
		return Result{}, err
	}
	if ctx.Err() != nil {
		return Result{Status: StatusBudgetExceeded}, nil
	}
	return simplex(ctx, p)
}
