package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beechford-estate/smart-plans/pkg/models/api"
)

func TestSolveCapexPhasingSpendsToMax(t *testing.T) {
	req := api.CapexRequest{
		HorizonMonths:      2,
		MonthlyCashCap:     []float64{100_000, 100_000},
		ContractorCapacity: api.ContractorCapacity{MaxParallelProjects: 1},
		Projects: []api.CapexProject{
			{ProjectID: "LOBBY", EarliestMonth: 1, LatestMonth: 2, MaxSpend: 150_000, UpliftRate: 0.1},
		},
	}

	resp, infErr, err := SolveCapexPhasing(context.Background(), req)
	require.NoError(t, err)
	require.Nil(t, infErr)

	var total float64
	for _, m := range resp.Schedule {
		total += m.Spend
	}
	assert.InDelta(t, 150_000, total, 1e-6)
	assert.InDelta(t, 15_000, resp.ExpectedAnnualNOIUplift, 1e-6)
	require.Len(t, resp.Schedule, 2)
	assert.Equal(t, 1, resp.Schedule[0].Month)

	assert.Empty(t, resp.ConstraintsReport.Binding)
	assert.Empty(t, resp.ConstraintsReport.ShadowPrices)
	assert.NotEmpty(t, resp.Downloads.XLSXGantt)
	assert.NotEmpty(t, resp.Downloads.CSVSchedule)
}

func TestSolveCapexPhasingRespectsWindow(t *testing.T) {
	req := api.CapexRequest{
		HorizonMonths:      3,
		MonthlyCashCap:     []float64{100_000, 100_000, 100_000},
		ContractorCapacity: api.ContractorCapacity{MaxParallelProjects: 2},
		Projects: []api.CapexProject{
			{ProjectID: "ROOF", EarliestMonth: 2, LatestMonth: 2, MaxSpend: 80_000, UpliftRate: 0.12},
		},
	}

	resp, infErr, err := SolveCapexPhasing(context.Background(), req)
	require.NoError(t, err)
	require.Nil(t, infErr)

	assert.Zero(t, resp.Schedule[0].Spend)
	assert.InDelta(t, 80_000, resp.Schedule[1].Spend, 1e-6)
	assert.Zero(t, resp.Schedule[2].Spend)
}

func TestSolveCapexPhasingParallelCapPicksBestProject(t *testing.T) {
	req := api.CapexRequest{
		HorizonMonths:      1,
		MonthlyCashCap:     []float64{100_000},
		ContractorCapacity: api.ContractorCapacity{MaxParallelProjects: 1},
		Projects: []api.CapexProject{
			{ProjectID: "HIGH", EarliestMonth: 1, LatestMonth: 1, MaxSpend: 100_000, UpliftRate: 0.2},
			{ProjectID: "LOW", EarliestMonth: 1, LatestMonth: 1, MaxSpend: 100_000, UpliftRate: 0.1},
		},
	}

	resp, infErr, err := SolveCapexPhasing(context.Background(), req)
	require.NoError(t, err)
	require.Nil(t, infErr)

	// One contractor slot: only the higher-uplift project runs.
	require.Len(t, resp.Schedule[0].Projects, 1)
	assert.Equal(t, "HIGH", resp.Schedule[0].Projects[0].ProjectID)
	assert.InDelta(t, 100_000, resp.Schedule[0].Projects[0].Spend, 1e-6)
	assert.InDelta(t, 20_000, resp.ExpectedAnnualNOIUplift, 1e-6)
}

func TestSolveCapexPhasingInfeasibleMinSpends(t *testing.T) {
	req := api.CapexRequest{
		HorizonMonths:      1,
		MonthlyCashCap:     []float64{200_000},
		ContractorCapacity: api.ContractorCapacity{MaxParallelProjects: 1},
		Projects: []api.CapexProject{
			{ProjectID: "A", EarliestMonth: 1, LatestMonth: 1, MinSpend: 50_000, MaxSpend: 100_000, UpliftRate: 0.1},
			{ProjectID: "B", EarliestMonth: 1, LatestMonth: 1, MinSpend: 50_000, MaxSpend: 100_000, UpliftRate: 0.1},
		},
	}

	resp, infErr, err := SolveCapexPhasing(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, infErr)
	assert.Nil(t, resp)
	assert.Equal(t, "Model infeasible", infErr.Error)
	assert.NotEmpty(t, infErr.FixSuggestions)
}

func TestSolveCapexPhasingNoProjects(t *testing.T) {
	req := api.CapexRequest{
		HorizonMonths:  2,
		MonthlyCashCap: []float64{100_000, 100_000},
	}

	resp, infErr, err := SolveCapexPhasing(context.Background(), req)
	require.NoError(t, err)
	require.Nil(t, infErr)

	require.Len(t, resp.Schedule, 2)
	assert.Zero(t, resp.Schedule[0].Spend)
	assert.Empty(t, resp.Schedule[0].Projects)
	assert.Zero(t, resp.ExpectedAnnualNOIUplift)
}

func TestSolveCapexPhasingShortCashCap(t *testing.T) {
	_, _, err := SolveCapexPhasing(context.Background(), api.CapexRequest{
		HorizonMonths:  3,
		MonthlyCashCap: []float64{100_000},
	})
	assert.Error(t, err)
}
