package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beechford-estate/smart-plans/pkg/models/api"
)

func testRouter() http.Handler {
	return ConfigureRouter(Config{
		SolverTimeBudget: 5 * time.Second,
		Logger:           zerolog.Nop(),
	})
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "beechford-smart-plans-api", body["service"])
}

func TestRootListsModules(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body["modules"], 4)
}

func TestDealPickerOptimize(t *testing.T) {
	payload := `{
		"budget": 1000000,
		"objective": "cash_yield",
		"deals": [
			{"deal_id": "D1", "ask_price": 400000, "expected_noi": 40000, "sector": "Office", "city": "Dubai"}
		]
	}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/deal-picker/optimize", strings.NewReader(payload))
	testRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.DealPickerResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.InDelta(t, 400_000, resp.PortfolioSummary.CapitalUsed, 1e-6)
	assert.Equal(t, 1, resp.PortfolioSummary.NumAssetsSelected)
}

func TestDebtStackInfeasibleReturns422(t *testing.T) {
	payload := `{
		"purchase_price": 1000000,
		"equity_cap": 0,
		"noi_schedule": {"noi": [50000]},
		"targets": {"max_ltv": 0.6, "min_dscr": 2.0},
		"tranches": [
			{"name": "senior", "rate_type": "fixed", "rate": 0.10, "max_share": 1.0}
		]
	}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/debt-stack/optimize", strings.NewReader(payload))
	testRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var infErr api.InfeasibleError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&infErr))
	assert.Equal(t, "Model infeasible", infErr.Error)
	assert.NotEmpty(t, infErr.FixSuggestions)
}

func TestOptimizeRejectsBadJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/leasing-mix/optimize", strings.NewReader("{not json"))
	testRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body api.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotEmpty(t, body.Error)
}

func TestCalculateReturnsTotals(t *testing.T) {
	payload := `{"principal": 100000, "rate": 0.1, "term_months": 12, "balloon": 0}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/calculate", strings.NewReader(payload))
	testRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body, "annuity")
	assert.Contains(t, body, "schedule")
	assert.Contains(t, body, "totals")

	var totals api.Totals
	require.NoError(t, json.Unmarshal(body["totals"], &totals))
	assert.Positive(t, totals.Annuity)
}

func TestEquilibriumFDirect(t *testing.T) {
	payload := `{"principal": 100000, "rate": 0.1, "term_months": 12, "balloon": 0, "asset_price": 100000}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/equilibrium/f", strings.NewReader(payload))
	testRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Equilibrium struct {
			Method string `json:"method"`
			OK     bool   `json:"ok"`
		} `json:"equilibrium"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "f_direct", body.Equilibrium.Method)
	assert.True(t, body.Equilibrium.OK)
}

func TestCalculateRejectsInvalidInputs(t *testing.T) {
	payload := `{"principal": -5, "rate": 0.1, "term_months": 12}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/calculate", strings.NewReader(payload))
	testRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body api.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body.Error, "principal")
}

func TestExportXLSXStreamsAttachment(t *testing.T) {
	payload := `{"principal": 100000, "rate": 0.1, "term_months": 12, "balloon": 0}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/export/xlsx", strings.NewReader(payload))
	testRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "calculation.xlsx")
	assert.Positive(t, rec.Body.Len())
}
