package plans

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beechford-estate/smart-plans/pkg/export"
	"github.com/beechford-estate/smart-plans/pkg/models/api"
)

func TestLeasingMixOptimize(t *testing.T) {
	h := NewHandler(5*time.Second, nil)
	body := `{
		"inventory": {"units_total": 100, "vacant_now": 20},
		"occupancy_target": 0.9,
		"incentive_budget": 200000,
		"packages": [{"name": "12m Standard", "rent": 100000, "inc_cost": 10000}],
		"constraints": {"max_share_per_package": 1.0}
	}`
	rec := httptest.NewRecorder()
	h.LeasingMix(rec, httptest.NewRequest(http.MethodPost, "/leasing-mix/optimize", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.LeasingResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.InDelta(t, 0.9, resp.KPIs.Occupancy, 1e-9)
}

func TestCapexPhasingInfeasibleReturns422(t *testing.T) {
	h := NewHandler(5*time.Second, nil)
	body := `{
		"horizon_months": 1,
		"monthly_cash_cap": [200000],
		"contractor_capacity": {"max_parallel_projects": 1},
		"projects": [
			{"project_id": "A", "earliest_month": 1, "latest_month": 1, "min_spend": 50000, "max_spend": 100000, "uplift_rate": 0.1},
			{"project_id": "B", "earliest_month": 1, "latest_month": 1, "min_spend": 50000, "max_spend": 100000, "uplift_rate": 0.1}
		]
	}`
	rec := httptest.NewRecorder()
	h.CapexPhasing(rec, httptest.NewRequest(http.MethodPost, "/capex-phasing/optimize", strings.NewReader(body)))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var infErr api.InfeasibleError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&infErr))
	assert.Equal(t, "Model infeasible", infErr.Error)
}

func TestBadRequestBodyReturns400(t *testing.T) {
	h := NewHandler(time.Second, nil)
	rec := httptest.NewRecorder()
	h.DealPicker(rec, httptest.NewRequest(http.MethodPost, "/deal-picker/optimize", strings.NewReader("not json")))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body api.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "invalid request body", body.Error)
}

func TestEmptyModelReturns400(t *testing.T) {
	h := NewHandler(time.Second, nil)
	rec := httptest.NewRecorder()
	h.DebtStack(rec, httptest.NewRequest(http.MethodPost, "/debt-stack/optimize", strings.NewReader(`{"purchase_price": 1000000}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDealPickerWritesArtifacts(t *testing.T) {
	exporter := &export.Exporter{BaseDir: t.TempDir()}
	h := NewHandler(5*time.Second, exporter)
	body := `{
		"budget": 1000000,
		"objective": "cash_yield",
		"deals": [{"deal_id": "D1", "ask_price": 400000, "expected_noi": 40000, "sector": "Office", "city": "Dubai"}]
	}`
	rec := httptest.NewRecorder()
	h.DealPicker(rec, httptest.NewRequest(http.MethodPost, "/deal-picker/optimize", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.DealPickerResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	for _, public := range []string{resp.Downloads.XLSXPlan, resp.Downloads.CSVAllocation} {
		path, err := exporter.Resolve(public)
		require.NoError(t, err)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}
