package optimizer

import (
	"context"
	"fmt"

	"github.com/beechford-estate/smart-plans/pkg/export"
	"github.com/beechford-estate/smart-plans/pkg/models/api"
	"github.com/beechford-estate/smart-plans/pkg/services/solver"
)

const defaultBigM = 1e6

// SolveCapexPhasing schedules project spend month by month to maximize
// annual NOI uplift. Spend in a month requires the project to be active
// there (a binary indicator), months outside a project's window are forced
// idle, and monthly cash and contractor-parallelism caps bound each
// period. Duals are meaningless for an integer program so the constraints
// report comes back empty.
func SolveCapexPhasing(ctx context.Context, req api.CapexRequest) (*api.CapexResponse, *api.InfeasibleError, error) {
	h := req.HorizonMonths
	if h <= 0 {
		return nil, nil, fmt.Errorf("capex phasing: horizon_months must be > 0")
	}
	if len(req.MonthlyCashCap) < h {
		return nil, nil, fmt.Errorf("capex phasing: monthly_cash_cap has %d entries, need %d", len(req.MonthlyCashCap), h)
	}
	j := len(req.Projects)
	if j == 0 {
		return &api.CapexResponse{
			Schedule:          emptySchedule(h),
			ConstraintsReport: emptyConstraintsReport(),
			Downloads:         capexDownloads(),
		}, nil, nil
	}

	bigM := defaultBigM
	for i, p := range req.Projects {
		if i == 0 || p.MaxSpend > bigM {
			bigM = p.MaxSpend
		}
	}

	// Variable layout: spend s[j,t] at j*h+(t-1), indicator y[j,t] at
	// j*h+(t-1) offset by j*h variables total.
	nSpend := j * h
	n := 2 * nSpend
	sIdx := func(pj, t int) int { return pj*h + (t - 1) }
	yIdx := func(pj, t int) int { return nSpend + pj*h + (t - 1) }

	objective := make([]float64, n)
	bounds := make([]solver.Bounds, n)
	integers := make([]int, 0, nSpend)
	var cons []solver.Constraint

	for pj, p := range req.Projects {
		for t := 1; t <= h; t++ {
			si, yi := sIdx(pj, t), yIdx(pj, t)
			objective[si] = -p.UpliftRate
			integers = append(integers, yi)
			if t < p.EarliestMonth || t > p.LatestMonth {
				bounds[si] = solver.Interval(0, 0)
				bounds[yi] = solver.Interval(0, 0)
				continue
			}
			bounds[si] = solver.Interval(0, bigM)
			bounds[yi] = solver.Interval(0, 1)
			link := make([]float64, n)
			link[si] = 1
			link[yi] = -bigM
			cons = append(cons, solver.Constraint{Coeffs: link, Bound: 0})
		}

		total := make([]float64, n)
		for t := 1; t <= h; t++ {
			total[sIdx(pj, t)] = 1
		}
		cons = append(cons, solver.Constraint{Coeffs: total, Bound: p.MaxSpend})
		if p.MinSpend > 0 {
			floor := make([]float64, n)
			for t := 1; t <= h; t++ {
				floor[sIdx(pj, t)] = -1
			}
			cons = append(cons, solver.Constraint{Coeffs: floor, Bound: -p.MinSpend})
		}
	}

	for t := 1; t <= h; t++ {
		cash := make([]float64, n)
		parallel := make([]float64, n)
		for pj := range req.Projects {
			cash[sIdx(pj, t)] = 1
			parallel[yIdx(pj, t)] = 1
		}
		cons = append(cons, solver.Constraint{Coeffs: cash, Bound: req.MonthlyCashCap[t-1]})
		cons = append(cons, solver.Constraint{Coeffs: parallel, Bound: float64(req.ContractorCapacity.MaxParallelProjects)})
	}

	res, err := solver.SolveMILP(ctx, solver.MILPProblem{
		Problem:  solver.Problem{Objective: objective, Constraints: cons, Bounds: bounds},
		Integers: integers,
	})
	if err != nil {
		return nil, nil, err
	}
	switch res.Status {
	case solver.StatusOptimal:
	case solver.StatusInfeasible, solver.StatusBudgetExceeded:
		return nil, infeasible(res.Status, []api.FixSuggestion{
			{Change: "Increase monthly cash caps", Impact: "+ feasibility"},
			{Change: "Lower project min spend", Impact: "+ feasibility"},
			{Change: "Increase max parallel projects", Impact: "+ feasibility"},
		}), nil
	default:
		return nil, nil, unexpectedStatus(res.Status)
	}

	schedule := make([]api.MonthSchedule, 0, h)
	for t := 1; t <= h; t++ {
		month := api.MonthSchedule{Month: t, Projects: []api.MonthProjectSpend{}}
		for pj, p := range req.Projects {
			v := res.X[sIdx(pj, t)]
			if v > 1e-6 {
				month.Projects = append(month.Projects, api.MonthProjectSpend{ProjectID: p.ProjectID, Spend: v})
				month.Spend += v
			}
		}
		schedule = append(schedule, month)
	}

	uplift := 0.0
	for pj, p := range req.Projects {
		for t := 1; t <= h; t++ {
			uplift += p.UpliftRate * res.X[sIdx(pj, t)]
		}
	}

	return &api.CapexResponse{
		Schedule:                schedule,
		ExpectedAnnualNOIUplift: uplift,
		ConstraintsReport:       emptyConstraintsReport(),
		Downloads:               capexDownloads(),
	}, nil, nil
}

func emptySchedule(h int) []api.MonthSchedule {
	out := make([]api.MonthSchedule, h)
	for t := range out {
		out[t] = api.MonthSchedule{Month: t + 1, Projects: []api.MonthProjectSpend{}}
	}
	return out
}

func capexDownloads() api.Downloads {
	return api.Downloads{
		XLSXGantt:   export.NowStamp("capex_gantt", "xlsx"),
		CSVSchedule: export.NowStamp("capex_schedule", "csv"),
	}
}
