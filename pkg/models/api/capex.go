package api

// CapexProject is one refurbishment project with its phasing window and
// spend envelope.
type CapexProject struct {
	ProjectID     string  `json:"project_id"`
	EarliestMonth int     `json:"earliest_month"`
	LatestMonth   int     `json:"latest_month"`
	MinSpend      float64 `json:"min_spend"`
	MaxSpend      float64 `json:"max_spend"`
	UpliftRate    float64 `json:"uplift_rate"`
}

type ContractorCapacity struct {
	MaxParallelProjects int `json:"max_parallel_projects"`
}

type CapexRequest struct {
	HorizonMonths      int                `json:"horizon_months"`
	MonthlyCashCap     []float64          `json:"monthly_cash_cap"`
	ContractorCapacity ContractorCapacity `json:"contractor_capacity"`
	Projects           []CapexProject     `json:"projects"`
}

type MonthProjectSpend struct {
	ProjectID string  `json:"project_id"`
	Spend     float64 `json:"spend"`
}

type MonthSchedule struct {
	Month    int                 `json:"month"`
	Spend    float64             `json:"spend"`
	Projects []MonthProjectSpend `json:"projects"`
}

type CapexResponse struct {
	Schedule                []MonthSchedule   `json:"schedule"`
	ExpectedAnnualNOIUplift float64           `json:"expected_annual_noi_uplift"`
	ConstraintsReport       ConstraintsReport `json:"constraints_report"`
	Downloads               Downloads         `json:"downloads"`
}
