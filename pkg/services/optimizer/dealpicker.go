package optimizer

import (
	"context"
	"fmt"
	"sort"

	"github.com/beechford-estate/smart-plans/pkg/export"
	"github.com/beechford-estate/smart-plans/pkg/models/api"
	"github.com/beechford-estate/smart-plans/pkg/services/solver"
)

// SolveDealPicker allocates fractions of the budget across candidate
// deals, maximizing expected (or risk-adjusted) NOI under the budget and
// per-sector/per-city allocation caps. Infeasible models come back as the
// structured error, never as a solver failure.
func SolveDealPicker(ctx context.Context, req api.DealPickerRequest) (*api.DealPickerResponse, *api.InfeasibleError, error) {
	n := len(req.Deals)
	if n == 0 {
		return nil, nil, fmt.Errorf("deal picker: no deals supplied")
	}

	costRate := req.Assumptions["deal_cost_rate"]
	vacancyHaircut := req.Assumptions["vacancy_haircut"]

	ask := make([]float64, n)
	effectiveNOI := make([]float64, n)
	for i, d := range req.Deals {
		ask[i] = d.AskPrice
		effectiveNOI[i] = d.ExpectedNOI * (1 - vacancyHaircut)
	}

	// Maximize NOI by minimizing its negation; the risk-adjusted variant
	// charges a penalty per risk point on capital at risk.
	objective := make([]float64, n)
	for i, d := range req.Deals {
		score := effectiveNOI[i]
		if req.Objective == "risk_adjusted" {
			score -= req.RiskPenaltyPerPoint * d.RiskScore * d.AskPrice
		}
		objective[i] = -score
	}

	cons := []solver.Constraint{
		{Name: "Budget", Coeffs: ask, Bound: req.Budget * (1 - costRate)},
	}
	cons = append(cons, allocationCaps(req.Deals, req.MaxAllocPerSector, req.Budget, func(d api.Deal) string { return d.Sector })...)
	cons = append(cons, allocationCaps(req.Deals, req.MaxAllocPerCity, req.Budget, func(d api.Deal) string { return d.City })...)

	bounds := make([]solver.Bounds, n)
	for i := range bounds {
		bounds[i] = solver.Interval(0, 1)
	}

	res, err := solver.Solve(ctx, solver.Problem{Objective: objective, Constraints: cons, Bounds: bounds})
	if err != nil {
		return nil, nil, err
	}
	switch res.Status {
	case solver.StatusOptimal:
	case solver.StatusInfeasible, solver.StatusBudgetExceeded:
		return nil, infeasible(res.Status, []api.FixSuggestion{
			{Change: "Increase budget", Impact: "+ feasibility"},
			{Change: "Relax caps", Impact: "+ feasibility"},
		}), nil
	default:
		return nil, nil, unexpectedStatus(res.Status)
	}

	var capitalUsed, expNOI float64
	selected := 0
	allocations := make([]api.AssetAllocation, 0, n)
	for i, d := range req.Deals {
		w := res.X[i]
		capital := w * ask[i]
		capitalUsed += capital
		expNOI += w * effectiveNOI[i]
		if w > 1e-6 {
			selected++
		}
		if w > allocationEps {
			allocations = append(allocations, api.AssetAllocation{
				DealID:      d.DealID,
				Weight:      capital / max(allocationEps, req.Budget),
				Capital:     capital,
				ExpectedNOI: w * effectiveNOI[i],
			})
		}
	}
	cashYield := 0.0
	if capitalUsed > 0 {
		cashYield = expNOI / capitalUsed
	}

	return &api.DealPickerResponse{
		PortfolioSummary: api.PortfolioSummary{
			CapitalUsed:       capitalUsed,
			CashYield:         cashYield,
			RiskAdjustedYield: cashYield,
			NumAssetsSelected: selected,
		},
		AssetAllocations:  allocations,
		ConstraintsReport: constraintsReport(cons, res),
		WhatIf: []api.WhatIf{
			{Change: "Increase budget +1,000,000 AED", DeltaCashYield: "+~0.2%"},
		},
		Downloads: api.Downloads{
			XLSXPlan:      export.NowStamp("deal_picker_plan", "xlsx"),
			CSVAllocation: export.NowStamp("deal_picker_allocs", "csv"),
		},
	}, nil, nil
}

// allocationCaps emits one share-cap row per category that actually has a
// matching deal; caps on absent categories would only add empty rows.
func allocationCaps(deals []api.Deal, caps map[string]float64, budget float64, key func(api.Deal) string) []solver.Constraint {
	names := make([]string, 0, len(caps))
	for name := range caps {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []solver.Constraint
	for _, name := range names {
		coeffs := make([]float64, len(deals))
		matched := false
		for i, d := range deals {
			if key(d) == name {
				coeffs[i] = d.AskPrice
				matched = true
			}
		}
		if !matched {
			continue
		}
		share := caps[name]
		out = append(out, solver.Constraint{
			Name:   fmt.Sprintf("Max %s Allocation %d%%", name, int(share*100)),
			Coeffs: coeffs,
			Bound:  budget * share,
		})
	}
	return out
}
