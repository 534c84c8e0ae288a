package api

type Inventory struct {
	UnitsTotal int `json:"units_total"`
	VacantNow  int `json:"vacant_now"`
}

// LeasePackage is one lease offer; the leading month-count in its name
// ("24m Standard") doubles as the package's lease-term contribution.
type LeasePackage struct {
	Name           string  `json:"name"`
	Rent           float64 `json:"rent"`
	IncCost        float64 `json:"inc_cost"`
	ExpectedTakeup float64 `json:"expected_takeup"`
}

type LeasingConstraints struct {
	MaxSharePerPackage float64 `json:"max_share_per_package"`
	MinWAULTMonths     float64 `json:"min_wault_months"`
}

type LeasingRequest struct {
	Inventory       Inventory          `json:"inventory"`
	OccupancyTarget float64            `json:"occupancy_target"`
	IncentiveBudget float64            `json:"incentive_budget"`
	Packages        []LeasePackage     `json:"packages"`
	Constraints     LeasingConstraints `json:"constraints"`
}

type MixItem struct {
	Package      string  `json:"package"`
	Units        int     `json:"units"`
	Share        float64 `json:"share"`
	WAULTContrib float64 `json:"wault_contrib"`
}

type LeasingKPIs struct {
	WAULTMonths    float64 `json:"wault_months"`
	Expected12mNCF float64 `json:"expected_12m_ncf"`
	IncentiveSpend float64 `json:"incentive_spend"`
	Occupancy      float64 `json:"occupancy"`
}

type LeasingResponse struct {
	Mix               []MixItem         `json:"mix"`
	KPIs              LeasingKPIs       `json:"kpis"`
	ConstraintsReport ConstraintsReport `json:"constraints_report"`
	WhatIf            []WhatIf          `json:"what_if"`
	Downloads         Downloads         `json:"downloads"`
}
