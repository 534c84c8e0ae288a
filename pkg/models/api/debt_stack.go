package api

// Tranche is one debt instrument available to the stack.
type Tranche struct {
	Name     string   `json:"name"`
	RateType string   `json:"rate_type"` // fixed | floating
	Rate     *float64 `json:"rate,omitempty"`
	Index    *string  `json:"index,omitempty"`
	Spread   *float64 `json:"spread,omitempty"`
	CapRate  *float64 `json:"cap_rate,omitempty"`
	MaxShare float64  `json:"max_share"`
	IOMonths int      `json:"io_months"`
}

// HedgeInstrument is accepted for schema compatibility; hedge selection is
// not part of the optimization and the response hedge list is always
// empty.
type HedgeInstrument struct {
	Type        string   `json:"type"`
	TenorMonths int      `json:"tenor_months"`
	PremiumRate *float64 `json:"premium_rate,omitempty"`
	Strike      *float64 `json:"strike,omitempty"`
	FixedRate   *float64 `json:"fixed_rate,omitempty"`
}

// RateScenario weights a floating-rate outcome for expected-cost pricing.
type RateScenario struct {
	Name   string  `json:"name"`
	SOFR   float64 `json:"sofr"`
	Weight float64 `json:"weight"`
}

type DebtTargets struct {
	MaxLTV        float64 `json:"max_ltv"`
	MinDSCR       float64 `json:"min_dscr"`
	MinFixedShare float64 `json:"min_fixed_share"`
}

type DebtStackRequest struct {
	PurchasePrice float64              `json:"purchase_price"`
	EquityCap     float64              `json:"equity_cap"`
	NOISchedule   map[string][]float64 `json:"noi_schedule"`
	Targets       DebtTargets          `json:"targets"`
	Tranches      []Tranche            `json:"tranches"`
	HedgeMenu     []HedgeInstrument    `json:"hedge_menu,omitempty"`
	RateScenarios []RateScenario       `json:"rate_scenarios,omitempty"`
}

// TrancheAllocation is the solved draw on one tranche. Rate is only set
// for fixed tranches; floating tranches report index and spread instead.
type TrancheAllocation struct {
	Name     string   `json:"name"`
	Amount   float64  `json:"amount"`
	Rate     *float64 `json:"rate"`
	IOMonths int      `json:"io_months"`
	Index    *string  `json:"index"`
	Spread   *float64 `json:"spread"`
}

type StackSummary struct {
	LTV          float64 `json:"ltv"`
	TotalDebt    float64 `json:"total_debt"`
	WeightedCost float64 `json:"weighted_cost"`
	MinDSCR      float64 `json:"min_dscr"`
}

// HedgePick exists for response-shape parity; see HedgeInstrument.
type HedgePick struct {
	Type     string   `json:"type"`
	Notional float64  `json:"notional"`
	Strike   *float64 `json:"strike,omitempty"`
	Premium  *float64 `json:"premium,omitempty"`
}

type DebtStackResponse struct {
	StackSummary      StackSummary        `json:"stack_summary"`
	TrancheAllocation []TrancheAllocation `json:"tranche_allocations"`
	Hedges            []HedgePick         `json:"hedges"`
	ConstraintsReport ConstraintsReport   `json:"constraints_report"`
	Downloads         Downloads           `json:"downloads"`
}
