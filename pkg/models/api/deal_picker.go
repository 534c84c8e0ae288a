package api

// Deal is one acquisition candidate.
type Deal struct {
	DealID      string  `json:"deal_id"`
	AskPrice    float64 `json:"ask_price"`
	ExpectedNOI float64 `json:"expected_noi"`
	Sector      string  `json:"sector"`
	City        string  `json:"city"`
	RiskScore   float64 `json:"risk_score"`
	MustBuy     bool    `json:"must_buy"`
}

// DealPickerRequest selects a fractional portfolio of deals under a budget
// and allocation caps. MaxAssets, MustBuy and AllowFractionalAllocations
// are accepted for schema compatibility but not enforced by the model.
type DealPickerRequest struct {
	Budget                     float64            `json:"budget"`
	Objective                  string             `json:"objective"` // cash_yield | risk_adjusted
	RiskPenaltyPerPoint        float64            `json:"risk_penalty_per_point"`
	MaxAssets                  *int               `json:"max_assets,omitempty"`
	MaxAllocPerSector          map[string]float64 `json:"max_alloc_per_sector,omitempty"`
	MaxAllocPerCity            map[string]float64 `json:"max_alloc_per_city,omitempty"`
	AllowFractionalAllocations bool               `json:"allow_fractional_allocations"`
	Assumptions                map[string]float64 `json:"assumptions,omitempty"`
	Deals                      []Deal             `json:"deals"`
}

// AssetAllocation is the solved position in one deal.
type AssetAllocation struct {
	DealID      string  `json:"deal_id"`
	Weight      float64 `json:"weight"` // share of the total budget
	Capital     float64 `json:"capital"`
	ExpectedNOI float64 `json:"expected_noi"`
}

type PortfolioSummary struct {
	CapitalUsed       float64 `json:"capital_used"`
	CashYield         float64 `json:"cash_yield"`
	RiskAdjustedYield float64 `json:"risk_adjusted_yield"`
	NumAssetsSelected int     `json:"num_assets_selected"`
}

type DealPickerResponse struct {
	PortfolioSummary  PortfolioSummary  `json:"portfolio_summary"`
	AssetAllocations  []AssetAllocation `json:"asset_allocations"`
	ConstraintsReport ConstraintsReport `json:"constraints_report"`
	WhatIf            []WhatIf          `json:"what_if"`
	Downloads         Downloads         `json:"downloads"`
}
