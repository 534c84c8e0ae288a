package solver

import (
	"context"
	"math"
)

const (
	intTol   = 1e-6
	maxNodes = 20000
)

// MILPProblem marks a subset of a Problem's variables as integer. The
// builders only ever declare binary activity indicators, but the search
// works for any bounded integer variable.
type MILPProblem struct {
	Problem
	Integers []int
}

// SolveMILP runs depth-first branch and bound over the LP relaxation.
// Slacks and duals are left empty on the result: they are not well defined
// once integrality cuts the feasible region.
func SolveMILP(ctx context.Context, p MILPProblem) (Result, error) {
	if err := p.validate(); err != nil {
		return Result{}, err
	}
	isInt := make(map[int]bool, len(p.Integers))
	for _, idx := range p.Integers {
		isInt[idx] = true
	}

	type node struct {
		bounds []Bounds
	}
	stack := []node{{bounds: p.Bounds}}

	best := Result{Status: StatusInfeasible, Objective: math.Inf(1)}
	nodes := 0
	iterations := 0

	for len(stack) > 0 {
		if ctx.Err() != nil {
			return Result{Status: StatusBudgetExceeded, Iterations: iterations}, nil
		}
		nodes++
		if nodes > maxNodes {
			return Result{Status: StatusBudgetExceeded, Iterations: iterations}, nil
		}

		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		sub := p.Problem
		sub.Bounds = nd.bounds
		relax, err := Solve(ctx, sub)
		if err != nil {
			return Result{}, err
		}
		iterations += relax.Iterations
		switch relax.Status {
		case StatusBudgetExceeded:
			return Result{Status: StatusBudgetExceeded, Iterations: iterations}, nil
		case StatusUnbounded:
			return Result{Status: StatusUnbounded, Iterations: iterations}, nil
		case StatusInfeasible:
			continue
		}
		if relax.Objective >= best.Objective-intTol {
			continue // bound: cannot beat the incumbent
		}

		// Branch on the most fractional integer variable.
		branch := -1
		worst := intTol
		for _, idx := range p.Integers {
			frac := math.Abs(relax.X[idx] - math.Round(relax.X[idx]))
			if frac > worst {
				worst = frac
				branch = idx
			}
		}
		if branch < 0 {
			best = relax
			best.Slacks = nil
			best.Duals = nil
			continue
		}

		floor := math.Floor(relax.X[branch])
		down := append([]Bounds(nil), nd.bounds...)
		down[branch].Upper = math.Min(down[branch].Upper, floor)
		up := append([]Bounds(nil), nd.bounds...)
		up[branch].Lower = math.Max(up[branch].Lower, floor+1)
		if down[branch].Upper >= down[branch].Lower {
			stack = append(stack, node{bounds: down})
		}
		if up[branch].Upper >= up[branch].Lower {
			stack = append(stack, node{bounds: up})
		}
	}

	best.Iterations = iterations
	if best.Status == StatusOptimal {
		// Snap near-integral values so callers see clean indicators.
		for _, idx := range p.Integers {
			best.X[idx] = math.Round(best.X[idx])
		}
	}
	return best, nil
}
