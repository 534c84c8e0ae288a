package solver

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	pivotTol      = 1e-9
	feasTol       = 1e-7
	ctxCheckEvery = 64
)

// tableau is a dense simplex tableau. Each row carries its right-hand side
// in the trailing cell; cost holds reduced costs with the negated objective
// value in the trailing cell.
type tableau struct {
	ncols   int
	rows    [][]float64
	cost    []float64
	basis   []int
	blocked []bool
}

func (t *tableau) pivot(r, c int) {
	row := t.rows[r]
	floats.Scale(1/row[c], row)
	for k, other := range t.rows {
		if k == r || math.Abs(other[c]) <= pivotTol {
			continue
		}
		floats.AddScaled(other, -other[c], row)
	}
	if math.Abs(t.cost[c]) > pivotTol {
		floats.AddScaled(t.cost, -t.cost[c], row)
	}
	t.basis[r] = c
}

// iterate runs Bland's-rule pivots until optimality, unboundedness, or a
// resource limit. Bland's rule is slow but cycle-free, which matters more
// than speed at the model sizes the builders produce.
func (t *tableau) iterate(ctx context.Context, maxIter int) (int, Status) {
	for it := 1; it <= maxIter; it++ {
		if it%ctxCheckEvery == 0 && ctx.Err() != nil {
			return it, StatusBudgetExceeded
		}

		enter := -1
		for j := 0; j < t.ncols; j++ {
			if !t.blocked[j] && t.cost[j] < -pivotTol {
				enter = j
				break
			}
		}
		if enter < 0 {
			return it - 1, StatusOptimal
		}

		leave := -1
		best := math.Inf(1)
		for i, row := range t.rows {
			if row[enter] <= pivotTol {
				continue
			}
			ratio := row[t.ncols] / row[enter]
			if ratio < best-pivotTol || (ratio < best+pivotTol && (leave < 0 || t.basis[i] < t.basis[leave])) {
				best = ratio
				leave = i
			}
		}
		if leave < 0 {
			return it, StatusUnbounded
		}
		t.pivot(leave, enter)
	}
	return maxIter, StatusBudgetExceeded
}

// standardRow is one canonical-form constraint row.
type standardRow struct {
	coeffs  []float64
	rhs     float64
	eq      bool
	negated bool
	named   int // index into Problem.Constraints, -1 for bound/equality rows
}

func simplex(ctx context.Context, p Problem) (Result, error) {
	n := len(p.Objective)

	lower := make([]float64, n)
	for i, b := range p.Bounds {
		lower[i] = b.Lower
	}

	var rows []standardRow
	addRow := func(coeffs []float64, bound float64, eq bool, named int) {
		shifted := bound - floats.Dot(coeffs, lower)
		r := standardRow{coeffs: append([]float64(nil), coeffs...), rhs: shifted, eq: eq, named: named}
		if r.rhs < 0 {
			floats.Scale(-1, r.coeffs)
			r.rhs = -r.rhs
			r.negated = true
		}
		rows = append(rows, r)
	}

	for i, c := range p.Constraints {
		addRow(c.Coeffs, c.Bound, false, i)
	}
	for i, b := range p.Bounds {
		if !math.IsInf(b.Upper, 1) {
			unit := make([]float64, n)
			unit[i] = 1
			addRow(unit, b.Upper, false, -1)
		}
	}
	for _, c := range p.Equalities {
		addRow(c.Coeffs, c.Bound, true, -1)
	}

	m := len(rows)
	nIneq := 0
	for _, r := range rows {
		if !r.eq {
			nIneq++
		}
	}

	// Column layout: decision variables, one slack per inequality row,
	// then artificials for equality rows and negated inequalities.
	slackStart := n
	artStart := n + nIneq
	nArt := 0
	for _, r := range rows {
		if r.eq || r.negated {
			nArt++
		}
	}
	ncols := artStart + nArt

	t := &tableau{
		ncols:   ncols,
		rows:    make([][]float64, m),
		cost:    make([]float64, ncols+1),
		basis:   make([]int, m),
		blocked: make([]bool, ncols),
	}
	orig := mat.NewDense(max(m, 1), max(ncols, 1), nil)

	slack, art := slackStart, artStart
	for i, r := range rows {
		row := make([]float64, ncols+1)
		copy(row, r.coeffs)
		row[ncols] = r.rhs
		if !r.eq {
			if r.negated {
				row[slack] = -1 // surplus
			} else {
				row[slack] = 1
			}
			slack++
		}
		if r.eq || r.negated {
			row[art] = 1
			t.basis[i] = art
			art++
		} else {
			t.basis[i] = slack - 1
		}
		t.rows[i] = row
		for j := 0; j < ncols; j++ {
			orig.Set(i, j, row[j])
		}
	}

	maxIter := 500 * (m + ncols)

	// Phase 1: minimize the sum of artificials.
	if nArt > 0 {
		for i, r := range rows {
			if r.eq || r.negated {
				floats.AddScaled(t.cost, -1, t.rows[i])
			}
		}
		for j := artStart; j < ncols; j++ {
			t.cost[j] += 1
		}
		_, st := t.iterate(ctx, maxIter)
		if st == StatusBudgetExceeded {
			return Result{Status: StatusBudgetExceeded}, nil
		}
		if -t.cost[ncols] > feasTol {
			return Result{Status: StatusInfeasible}, nil
		}
		// Drive leftover zero-level artificials out of the basis; rows
		// where no structural column remains are redundant.
		for i := range t.rows {
			if t.basis[i] < artStart {
				continue
			}
			for j := 0; j < artStart; j++ {
				if math.Abs(t.rows[i][j]) > pivotTol {
					t.pivot(i, j)
					break
				}
			}
		}
		for j := artStart; j < ncols; j++ {
			t.blocked[j] = true
		}
	}

	// Phase 2: rebuild reduced costs for the real objective.
	for j := range t.cost {
		t.cost[j] = 0
	}
	copy(t.cost, p.Objective)
	for i, bi := range t.basis {
		if bi < n && math.Abs(p.Objective[bi]) > pivotTol {
			floats.AddScaled(t.cost, -p.Objective[bi], t.rows[i])
		}
	}
	iters, st := t.iterate(ctx, maxIter)
	switch st {
	case StatusBudgetExceeded:
		return Result{Status: StatusBudgetExceeded, Iterations: iters}, nil
	case StatusUnbounded:
		return Result{Status: StatusUnbounded, Iterations: iters}, nil
	}

	x := append([]float64(nil), lower...)
	for i, bi := range t.basis {
		if bi < n {
			x[bi] += t.rows[i][t.ncols]
		}
	}

	res := Result{
		Status:     StatusOptimal,
		X:          x,
		Objective:  floats.Dot(p.Objective, x),
		Slacks:     make([]float64, len(p.Constraints)),
		Duals:      make([]float64, len(p.Constraints)),
		Iterations: iters,
	}
	for i, c := range p.Constraints {
		res.Slacks[i] = c.Bound - floats.Dot(c.Coeffs, x)
	}
	if m > 0 {
		res.fillDuals(p, rows, orig, t)
	}
	return res, nil
}

// fillDuals recovers y = c_Bᵀ·B⁻¹ from the final basis, using the
// pre-pivot column matrix. Dual values follow the minimization marginal
// convention; a row that was negated during canonicalization flips sign
// back to the caller's orientation.
func (res *Result) fillDuals(p Problem, rows []standardRow, orig *mat.Dense, t *tableau) {
	m := len(rows)
	n := len(p.Objective)

	basisMat := mat.NewDense(m, m, nil)
	cb := mat.NewVecDense(m, nil)
	for col, bi := range t.basis {
		for r := 0; r < m; r++ {
			basisMat.Set(r, col, orig.At(r, bi))
		}
		if bi < n {
			cb.SetVec(col, p.Objective[bi])
		}
	}

	var lu mat.LU
	lu.Factorize(basisMat)
	y := mat.NewVecDense(m, nil)
	if err := lu.SolveVecTo(y, true, cb); err != nil {
		// Singular basis after degenerate pivoting: leave duals at zero.
		return
	}
	for i, r := range rows {
		if r.named < 0 {
			continue
		}
		d := y.AtVec(i)
		if r.negated {
			d = -d
		}
		res.Duals[r.named] = d
	}
}
