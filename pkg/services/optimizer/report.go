// Package optimizer contains the four Smart Plans model builders. Each
// builder translates a validated request into a linear (or mixed-integer)
// program, runs the solver, and projects the decision vector back into the
// response shape the frontend and spreadsheet exports consume.
package optimizer

import (
	"fmt"

	"github.com/beechford-estate/smart-plans/pkg/models/api"
	"github.com/beechford-estate/smart-plans/pkg/services/solver"
)

const (
	// A constraint with this much slack or less is considered binding.
	bindingTol = 1e-6

	// Allocations below this weight are treated as numerical noise.
	allocationEps = 1e-9

	currencyUnit = "AED"
)

func bindingConstraints(cons []solver.Constraint, slacks []float64) []api.BindingConstraint {
	out := make([]api.BindingConstraint, 0, len(cons))
	for i, c := range cons {
		if slacks[i] <= bindingTol {
			out = append(out, api.BindingConstraint{Name: c.Name, Slack: slacks[i]})
		}
	}
	return out
}

func shadowPrices(cons []solver.Constraint, duals []float64, unit string) []api.ShadowPrice {
	out := make([]api.ShadowPrice, 0, len(cons))
	for i, c := range cons {
		out = append(out, api.ShadowPrice{Constraint: c.Name, Unit: unit, MarginalValue: duals[i]})
	}
	return out
}

func constraintsReport(cons []solver.Constraint, res solver.Result) api.ConstraintsReport {
	return api.ConstraintsReport{
		Binding:      bindingConstraints(cons, res.Slacks),
		ShadowPrices: shadowPrices(cons, res.Duals, currencyUnit),
	}
}

func emptyConstraintsReport() api.ConstraintsReport {
	return api.ConstraintsReport{
		Binding:      []api.BindingConstraint{},
		ShadowPrices: []api.ShadowPrice{},
	}
}

// infeasible builds the structured error shape for a failed solve. The
// budget-exceeded status gets its own message so operators can tell a hard
// model from a slow one.
func infeasible(status solver.Status, suggestions []api.FixSuggestion) *api.InfeasibleError {
	if status == solver.StatusBudgetExceeded {
		return &api.InfeasibleError{
			Error: "Solver budget exceeded",
			FixSuggestions: []api.FixSuggestion{
				{Change: "Increase solver time budget", Impact: "Required"},
				{Change: "Reduce model size", Impact: "+ speed"},
			},
		}
	}
	return &api.InfeasibleError{Error: "Model infeasible", FixSuggestions: suggestions}
}

func unexpectedStatus(status solver.Status) error {
	return fmt.Errorf("optimizer: unexpected solver status %v", status)
}
