package solver

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveMILPKnapsack(t *testing.T) {
	// max 5a + 4b + 3c with weights 2,3,4 under capacity 6, binary picks.
	// Integer optimum takes a and b (value 9); the LP relaxation would
	// also take a quarter of c, so branching has to happen.
	p := MILPProblem{
		Problem: Problem{
			Objective:   []float64{-5, -4, -3},
			Constraints: []Constraint{{Name: "capacity", Coeffs: []float64{2, 3, 4}, Bound: 6}},
			Bounds:      []Bounds{Interval(0, 1), Interval(0, 1), Interval(0, 1)},
		},
		Integers: []int{0, 1, 2},
	}

	res, err := SolveMILP(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, res.Status)

	assert.InDelta(t, -9.0, res.Objective, 1e-6)
	assert.Equal(t, 1.0, res.X[0])
	assert.Equal(t, 1.0, res.X[1])
	assert.Equal(t, 0.0, res.X[2])
	assert.Empty(t, res.Duals)
	assert.Empty(t, res.Slacks)
}

func TestSolveMILPIntegrality(t *testing.T) {
	// max x with 2x <= 3 and x integer in [0, 5] must land on 1, not 1.5.
	p := MILPProblem{
		Problem: Problem{
			Objective:   []float64{-1},
			Constraints: []Constraint{{Name: "cap", Coeffs: []float64{2}, Bound: 3}},
			Bounds:      []Bounds{Interval(0, 5)},
		},
		Integers: []int{0},
	}
	res, err := SolveMILP(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, res.Status)
	assert.InDelta(t, 1.0, res.X[0], 1e-9)
}

func TestSolveMILPInfeasible(t *testing.T) {
	p := MILPProblem{
		Problem: Problem{
			Objective: []float64{1},
			Constraints: []Constraint{
				{Name: "cap", Coeffs: []float64{1}, Bound: 0.4},
				{Name: "floor", Coeffs: []float64{-1}, Bound: -0.6},
			},
			Bounds: []Bounds{Interval(0, 1)},
		},
		Integers: []int{0},
	}
	res, err := SolveMILP(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, res.Status)
}

func TestSolveMILPRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := MILPProblem{
		Problem: Problem{
			Objective: []float64{-1},
			Bounds:    []Bounds{Interval(0, 1)},
		},
		Integers: []int{0},
	}
	res, err := SolveMILP(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, StatusBudgetExceeded, res.Status)
}

func TestSolveMILPContinuousMix(t *testing.T) {
	// One binary switch gating a continuous spend: s <= 10*y, max s - y/2.
	p := MILPProblem{
		Problem: Problem{
			Objective:   []float64{-1, 0.5},
			Constraints: []Constraint{{Name: "link", Coeffs: []float64{1, -10}, Bound: 0}},
			Bounds:      []Bounds{Interval(0, 10), Interval(0, 1)},
		},
		Integers: []int{1},
	}
	res, err := SolveMILP(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, res.Status)
	assert.InDelta(t, 10.0, res.X[0], 1e-6)
	assert.Equal(t, 1.0, res.X[1])
	assert.False(t, math.Signbit(res.X[1]))
}
