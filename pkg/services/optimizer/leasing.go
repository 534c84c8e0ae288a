package optimizer

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/beechford-estate/smart-plans/pkg/export"
	"github.com/beechford-estate/smart-plans/pkg/models/api"
	"github.com/beechford-estate/smart-plans/pkg/services/solver"
)

var tenorPattern = regexp.MustCompile(`^(\d+)[mM]`)

// tenorFromName reads the leading month count out of a package name such
// as "24m Standard". Names without one default to a 12 month term.
func tenorFromName(name string) float64 {
	m := tenorPattern.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return 12
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 12
	}
	return v
}

// SolveLeasingMix distributes the vacant units that must be filled to hit
// the occupancy target across lease packages, maximizing rent net of
// incentives under the incentive budget, per-package share caps and a
// weighted-average lease term floor.
func SolveLeasingMix(ctx context.Context, req api.LeasingRequest) (*api.LeasingResponse, *api.InfeasibleError, error) {
	p := len(req.Packages)
	if p == 0 {
		return nil, nil, fmt.Errorf("leasing mix: no packages supplied")
	}
	units := req.Inventory.UnitsTotal
	vacant := req.Inventory.VacantNow
	if units <= 0 {
		return nil, nil, fmt.Errorf("leasing mix: units_total must be > 0")
	}

	unitsNeeded := int(math.Round(req.OccupancyTarget*float64(units))) - (units - vacant)
	if unitsNeeded < 0 {
		unitsNeeded = 0
	}

	costs := make([]float64, p)
	wault := make([]float64, p)
	objective := make([]float64, p)
	for i, pkg := range req.Packages {
		costs[i] = pkg.IncCost
		wault[i] = tenorFromName(pkg.Name)
		objective[i] = -(pkg.Rent - pkg.IncCost)
	}

	shareCap := req.Constraints.MaxSharePerPackage
	minWAULT := req.Constraints.MinWAULTMonths

	cons := []solver.Constraint{
		{Name: "Incentive budget", Coeffs: costs, Bound: req.IncentiveBudget},
	}
	for i, pkg := range req.Packages {
		row := make([]float64, p)
		row[i] = 1
		cons = append(cons, solver.Constraint{
			Name:   fmt.Sprintf("Max share %s %d%%", pkg.Name, int(shareCap*100)),
			Coeffs: row,
			Bound:  shareCap * float64(units),
		})
	}
	// mean tenor >= floor, linearized over unit counts
	waultRow := make([]float64, p)
	for i := range waultRow {
		waultRow[i] = -(wault[i] - minWAULT)
	}
	cons = append(cons, solver.Constraint{
		Name:   fmt.Sprintf("Min WAULT %sm", strconv.FormatFloat(minWAULT, 'g', -1, 64)),
		Coeffs: waultRow,
		Bound:  0,
	})

	bounds := make([]solver.Bounds, p)
	for i := range bounds {
		bounds[i] = solver.Interval(0, float64(vacant))
	}

	res, err := solver.Solve(ctx, solver.Problem{
		Objective:   objective,
		Constraints: cons,
		Equalities:  []solver.Constraint{{Name: "units", Coeffs: ones(p), Bound: float64(unitsNeeded)}},
		Bounds:      bounds,
	})
	if err != nil {
		return nil, nil, err
	}
	switch res.Status {
	case solver.StatusOptimal:
	case solver.StatusInfeasible, solver.StatusBudgetExceeded:
		return nil, infeasible(res.Status, []api.FixSuggestion{
			{Change: "Increase incentive budget", Impact: "+ feasibility"},
			{Change: "Lower min WAULT months", Impact: "+ feasibility"},
			{Change: "Reduce occupancy target", Impact: "+ feasibility"},
		}), nil
	default:
		return nil, nil, unexpectedStatus(res.Status)
	}

	var totalUnits, incSpend, expectedNCF, waultWeighted float64
	mix := make([]api.MixItem, 0, p)
	for i, pkg := range req.Packages {
		u := res.X[i]
		totalUnits += u
		incSpend += u * costs[i]
		expectedNCF += u * (pkg.Rent - pkg.IncCost)
		waultWeighted += u * wault[i]
		if u > allocationEps {
			mix = append(mix, api.MixItem{
				Package:      pkg.Name,
				Units:        int(math.Round(u)),
				Share:        u / max(1, float64(unitsNeeded)),
				WAULTContrib: wault[i],
			})
		}
	}
	waultMonths := waultWeighted / max(allocationEps, totalUnits)
	newWAULT := math.Round(waultMonths*10) / 10

	return &api.LeasingResponse{
		Mix: mix,
		KPIs: api.LeasingKPIs{
			WAULTMonths:    waultMonths,
			Expected12mNCF: expectedNCF,
			IncentiveSpend: incSpend,
			Occupancy:      (float64(units-vacant) + totalUnits) / float64(units),
		},
		ConstraintsReport: constraintsReport(cons, res),
		WhatIf: []api.WhatIf{
			{Change: "+20,000 incentives", DeltaExpected12mNCF: "+~60,000", NewWAULT: &newWAULT},
		},
		Downloads: api.Downloads{
			XLSXOfferPlan: export.NowStamp("leasing_offer_plan", "xlsx"),
		},
	}, nil, nil
}
