package plans

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beechford-estate/smart-plans/pkg/export"
	"github.com/beechford-estate/smart-plans/pkg/models/api"
)

func writeDealPickerArtifacts(e export.Exporter, resp *api.DealPickerResponse) error {
	summary := export.Sheet{Name: "Summary", Rows: [][]any{
		{"Metric", "Value"},
		{"capital_used", resp.PortfolioSummary.CapitalUsed},
		{"cash_yield", resp.PortfolioSummary.CashYield},
		{"risk_adjusted_yield", resp.PortfolioSummary.RiskAdjustedYield},
		{"num_assets_selected", resp.PortfolioSummary.NumAssetsSelected},
	}}
	allocs := export.Sheet{Name: "Allocations", Rows: [][]any{
		{"deal_id", "weight", "capital", "expected_noi"},
	}}
	records := make([][]string, 0, len(resp.AssetAllocations))
	for _, a := range resp.AssetAllocations {
		allocs.Rows = append(allocs.Rows, []any{a.DealID, a.Weight, a.Capital, a.ExpectedNOI})
		records = append(records, []string{
			a.DealID,
			formatFloat(a.Weight),
			formatFloat(a.Capital),
			formatFloat(a.ExpectedNOI),
		})
	}

	if err := e.WriteWorkbook(resp.Downloads.XLSXPlan, []export.Sheet{summary, allocs}); err != nil {
		return err
	}
	return e.WriteCSV(resp.Downloads.CSVAllocation, []string{"deal_id", "weight", "capital", "expected_noi"}, records)
}

// writeDebtStackArtifacts emits an interest-only approximation of the
// first year: floating tranches without a resolved rate carry zero
// interest in the sheet.
func writeDebtStackArtifacts(e export.Exporter, resp *api.DebtStackResponse) error {
	header := []any{"Month"}
	for _, tr := range resp.TrancheAllocation {
		header = append(header, tr.Name)
	}
	header = append(header, "Total Interest")

	sheet := export.Sheet{Name: "Amort (IO Approx)", Rows: [][]any{header}}
	for m := 1; m <= 12; m++ {
		row := []any{m}
		total := 0.0
		for _, tr := range resp.TrancheAllocation {
			rate := 0.0
			if tr.Rate != nil {
				rate = *tr.Rate
			}
			interest := tr.Amount * rate / 12.0
			total += interest
			row = append(row, interest)
		}
		row = append(row, total)
		sheet.Rows = append(sheet.Rows, row)
	}
	return e.WriteWorkbook(resp.Downloads.XLSXAmort, []export.Sheet{sheet})
}

func writeLeasingArtifacts(e export.Exporter, resp *api.LeasingResponse) error {
	offers := export.Sheet{Name: "Offer Plan", Rows: [][]any{
		{"Package", "Units", "Share", "WAULT contrib (m)"},
	}}
	for _, m := range resp.Mix {
		offers.Rows = append(offers.Rows, []any{m.Package, m.Units, m.Share, m.WAULTContrib})
	}
	kpis := export.Sheet{Name: "KPIs", Rows: [][]any{
		{"Metric", "Value"},
		{"wault_months", resp.KPIs.WAULTMonths},
		{"expected_12m_ncf", resp.KPIs.Expected12mNCF},
		{"incentive_spend", resp.KPIs.IncentiveSpend},
		{"occupancy", resp.KPIs.Occupancy},
	}}
	return e.WriteWorkbook(resp.Downloads.XLSXOfferPlan, []export.Sheet{offers, kpis})
}

func writeCapexArtifacts(e export.Exporter, resp *api.CapexResponse) error {
	gantt := export.Sheet{Name: "Capex Schedule", Rows: [][]any{
		{"Month", "Total Spend", "Breakdown"},
	}}
	var records [][]string
	for _, month := range resp.Schedule {
		parts := make([]string, 0, len(month.Projects))
		for _, p := range month.Projects {
			parts = append(parts, fmt.Sprintf("%s:%.0f", p.ProjectID, p.Spend))
			records = append(records, []string{
				strconv.Itoa(month.Month),
				p.ProjectID,
				formatFloat(p.Spend),
			})
		}
		gantt.Rows = append(gantt.Rows, []any{month.Month, month.Spend, strings.Join(parts, " · ")})
	}

	if err := e.WriteWorkbook(resp.Downloads.XLSXGantt, []export.Sheet{gantt}); err != nil {
		return err
	}
	return e.WriteCSV(resp.Downloads.CSVSchedule, []string{"month", "project_id", "spend"}, records)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
