package optimizer

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/beechford-estate/smart-plans/pkg/export"
	"github.com/beechford-estate/smart-plans/pkg/models/api"
	"github.com/beechford-estate/smart-plans/pkg/services/solver"
)

// SolveDebtStack sizes the tranches of a debt stack at minimum weighted
// interest cost. The stack must draw the full debt capacity
// (min of LTV cap and price-minus-equity); DSCR, per-tranche share caps
// and the minimum fixed-rate share bound the mix. A capacity that cannot
// be reached under those caps is an infeasible model, reported with
// remediation hints.
func SolveDebtStack(ctx context.Context, req api.DebtStackRequest) (*api.DebtStackResponse, *api.InfeasibleError, error) {
	k := len(req.Tranches)
	if k == 0 {
		return nil, nil, fmt.Errorf("debt stack: no tranches supplied")
	}
	if req.PurchasePrice <= 0 {
		return nil, nil, fmt.Errorf("debt stack: purchase_price must be > 0")
	}

	rates := make([]float64, k)
	for i, t := range req.Tranches {
		rates[i] = effectiveRate(t, req.RateScenarios)
	}

	price := req.PurchasePrice
	debtCap := math.Min(req.Targets.MaxLTV*price, math.Max(price-req.EquityCap, 0))

	noiMin := 0.0
	if noi := req.NOISchedule["noi"]; len(noi) > 0 {
		noiMin = noi[0]
		for _, v := range noi[1:] {
			noiMin = math.Min(noiMin, v)
		}
	}

	cons := []solver.Constraint{
		{Name: "Debt cap (min of LTV & Equity)", Coeffs: ones(k), Bound: debtCap},
	}
	if req.Targets.MinDSCR > 0 && noiMin > 0 {
		cons = append(cons, solver.Constraint{
			Name:   "Min DSCR " + strconv.FormatFloat(req.Targets.MinDSCR, 'g', -1, 64),
			Coeffs: append([]float64(nil), rates...),
			Bound:  noiMin / req.Targets.MinDSCR,
		})
	}
	for i, t := range req.Tranches {
		row := make([]float64, k)
		row[i] = 1
		cons = append(cons, solver.Constraint{
			Name:   fmt.Sprintf("%s share cap %d%%", t.Name, int(t.MaxShare*100)),
			Coeffs: row,
			Bound:  t.MaxShare * price,
		})
	}
	if s := req.Targets.MinFixedShare; s > 0 {
		// fixed_k * d >= s * total  <=>  -(fixed_k - s) * d <= 0
		row := make([]float64, k)
		for i, t := range req.Tranches {
			fixed := 0.0
			if t.RateType == "fixed" {
				fixed = 1
			}
			row[i] = -(fixed - s)
		}
		cons = append(cons, solver.Constraint{
			Name:   fmt.Sprintf("Min fixed share %d%%", int(s*100)),
			Coeffs: row,
			Bound:  0,
		})
	}

	bounds := make([]solver.Bounds, k)
	for i := range bounds {
		bounds[i] = solver.NonNegative()
	}

	res, err := solver.Solve(ctx, solver.Problem{
		Objective:   append([]float64(nil), rates...),
		Constraints: cons,
		// The purchase must actually be funded: draw the capacity in full.
		Equalities: []solver.Constraint{{Name: "funding", Coeffs: ones(k), Bound: debtCap}},
		Bounds:     bounds,
	})
	if err != nil {
		return nil, nil, err
	}
	switch res.Status {
	case solver.StatusOptimal:
	case solver.StatusInfeasible, solver.StatusBudgetExceeded:
		return nil, infeasible(res.Status, []api.FixSuggestion{
			{Change: "Lower min DSCR", Impact: "+ feasibility"},
			{Change: "Increase equity", Impact: "+ feasibility"},
			{Change: "Relax tranche caps", Impact: "+ feasibility"},
		}), nil
	default:
		return nil, nil, unexpectedStatus(res.Status)
	}

	var totalDebt, totalCost float64
	for i := range req.Tranches {
		totalDebt += res.X[i]
		totalCost += res.X[i] * rates[i]
	}
	weightedCost := 0.0
	if totalDebt > 0 {
		weightedCost = totalCost / totalDebt
	}
	dscrReal := 0.0
	if noiMin > 0 {
		dscrReal = noiMin / max(allocationEps, totalCost)
	}

	allocations := make([]api.TrancheAllocation, k)
	for i, t := range req.Tranches {
		alloc := api.TrancheAllocation{
			Name:     t.Name,
			Amount:   res.X[i],
			IOMonths: t.IOMonths,
			Index:    t.Index,
			Spread:   t.Spread,
		}
		if t.RateType == "fixed" {
			r := rates[i]
			alloc.Rate = &r
		}
		allocations[i] = alloc
	}

	return &api.DebtStackResponse{
		StackSummary: api.StackSummary{
			LTV:          totalDebt / price,
			TotalDebt:    totalDebt,
			WeightedCost: weightedCost,
			MinDSCR:      dscrReal,
		},
		TrancheAllocation: allocations,
		Hedges:            []api.HedgePick{},
		ConstraintsReport: constraintsReport(cons, res),
		Downloads: api.Downloads{
			PDFTermSheet: export.NowStamp("debt_stack_term_sheet", "pdf"),
			XLSXAmort:    export.NowStamp("debt_amort", "xlsx"),
		},
	}, nil, nil
}

// effectiveRate prices a tranche: the stated coupon when fixed, otherwise
// the scenario-weighted floating base plus spread.
func effectiveRate(t api.Tranche, scenarios []api.RateScenario) float64 {
	if t.RateType == "fixed" {
		if t.Rate != nil {
			return *t.Rate
		}
		return 0
	}
	base := 0.0
	for _, sc := range scenarios {
		base += sc.Weight * sc.SOFR
	}
	if t.Spread != nil {
		base += *t.Spread
	}
	return base
}

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}
