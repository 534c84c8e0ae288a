// Package api holds the wire types for the Smart Plans endpoints. Field
// names are the contract: downstream spreadsheets and the frontend consume
// these JSON keys verbatim.
package api

// BindingConstraint is a constraint whose slack is (numerically) zero at
// the optimum.
type BindingConstraint struct {
	Name  string  `json:"name"`
	Slack float64 `json:"slack"`
}

// ShadowPrice reports the marginal objective value of relaxing one
// constraint's bound by one unit.
type ShadowPrice struct {
	Constraint    string  `json:"constraint"`
	Unit          string  `json:"unit"`
	MarginalValue float64 `json:"marginal_value"`
}

// ConstraintsReport summarizes the active constraint set of a solve.
// Integer programs return it empty: duals are not defined there.
type ConstraintsReport struct {
	Binding      []BindingConstraint `json:"binding"`
	ShadowPrices []ShadowPrice       `json:"shadow_prices"`
}

// Downloads carries the artifact paths a solve produced (or will produce).
type Downloads struct {
	XLSXPlan      string `json:"xlsx_plan,omitempty"`
	CSVAllocation string `json:"csv_allocations,omitempty"`
	PDFTermSheet  string `json:"pdf_term_sheet,omitempty"`
	XLSXAmort     string `json:"xlsx_amort,omitempty"`
	XLSXGantt     string `json:"xlsx_gantt,omitempty"`
	CSVSchedule   string `json:"csv_schedule,omitempty"`
	XLSXOfferPlan string `json:"xlsx_offer_plan,omitempty"`
}

// WhatIf is a human-facing sensitivity hint attached to some responses.
type WhatIf struct {
	Change              string   `json:"change"`
	DeltaCashYield      string   `json:"delta_cash_yield,omitempty"`
	DeltaExpected12mNCF string   `json:"delta_expected_12m_ncf,omitempty"`
	NewWAULT            *float64 `json:"new_wault,omitempty"`
}

// FixSuggestion is one remediation hint on an infeasible model.
type FixSuggestion struct {
	Change string `json:"change"`
	Impact string `json:"impact"`
}

// InfeasibleError is the structured failure shape every optimizer returns
// instead of surfacing solver internals.
type InfeasibleError struct {
	Error          string          `json:"error"`
	FixSuggestions []FixSuggestion `json:"fix_suggestions"`
}
