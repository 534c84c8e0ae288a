// Package calculator exposes the IPA amortization engine and its
// VAT-equilibrium solvers over HTTP.
package calculator

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/beechford-estate/smart-plans/pkg/export"
	"github.com/beechford-estate/smart-plans/pkg/models/api"
	"github.com/beechford-estate/smart-plans/pkg/services/ipa"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// calculateResponse adds the totals block older spreadsheet clients still
// read alongside the flat result fields.
type calculateResponse struct {
	ipa.Result
	Totals api.Totals `json:"totals"`
}

func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	req, ok := decodeCalc(w, r, logger)
	if !ok {
		return
	}

	res, err := ipa.Run(payload(req).Inputs)
	if err != nil {
		writeJSON(w, logger, http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, logger, http.StatusOK, calculateResponse{
		Result: res,
		Totals: api.Totals{
			Annuity:  res.Annuity,
			IPAVAT:   res.IPAVAT,
			AssetVAT: res.AssetVAT,
			VATDelta: res.VATDelta,
		},
	})
}

func (h *Handler) EquilibriumPrincipal(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	req, ok := decodeCalc(w, r, logger)
	if !ok {
		return
	}

	out, err := ipa.SolveEquilibriumPrincipal(payload(req), ipa.PrincipalOptions{})
	if err != nil {
		writeJSON(w, logger, http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, logger, http.StatusOK, out)
}

func (h *Handler) EquilibriumF(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	req, ok := decodeCalc(w, r, logger)
	if !ok {
		return
	}

	out, err := ipa.SolveEquilibriumF(payload(req))
	if err != nil {
		writeJSON(w, logger, http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, logger, http.StatusOK, out)
}

func (h *Handler) EquilibriumFBisect(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req api.FBisectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, logger, http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return
	}

	out, err := ipa.SolveEquilibriumFBisect(payload(req.CalcRequest), ipa.FBisectOptions{
		Around:  req.Around,
		Span:    req.Span,
		Tol:     req.Tol,
		MaxIter: req.MaxIter,
	})
	if err != nil {
		writeJSON(w, logger, http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, logger, http.StatusOK, out)
}

// ExportXLSX streams the full amortization schedule as a workbook, without
// touching disk.
func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	req, ok := decodeCalc(w, r, logger)
	if !ok {
		return
	}

	res, err := ipa.Run(payload(req).Inputs)
	if err != nil {
		writeJSON(w, logger, http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	rows := make([]export.AmortRow, 0, len(res.FullSchedule))
	for _, row := range res.FullSchedule {
		rows = append(rows, export.AmortRow{
			Month:       row.Month,
			Interest:    row.Interest,
			TSF:         row.TSF,
			Capital:     row.Capital,
			Annuity:     row.Annuity,
			Outstanding: row.Outstanding,
		})
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="calculation.xlsx"`)
	if err := export.WriteAmortization(w, rows); err != nil {
		logger.Error().Err(err).Msg("failed to stream workbook")
	}
}

func decodeCalc(w http.ResponseWriter, r *http.Request, logger *zerolog.Logger) (api.CalcRequest, bool) {
	var req api.CalcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, logger, http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return api.CalcRequest{}, false
	}
	return req, true
}

// payload substitutes the documented defaults for any knob the request
// left unset. This happens here, once, so the engine always sees explicit
// values.
func payload(req api.CalcRequest) ipa.Payload {
	inp := ipa.Inputs{
		Principal:         req.Principal,
		Rate:              req.Rate,
		TermMonths:        req.TermMonths,
		Balloon:           req.Balloon,
		AssetVAT:          req.AssetVAT,
		VATRate:           ipa.DefaultVATRate,
		TelematicsMonthly: ipa.DefaultTelematicsMonthly,
		IncludeIRC:        true,
		IncludeBanking:    true,
		IRCRate:           ipa.DefaultIRCRate,
		BankingRate:       ipa.DefaultBankingRate,
	}
	if req.VATRate != nil {
		inp.VATRate = *req.VATRate
	}
	if req.TelematicsMonthly != nil {
		inp.TelematicsMonthly = *req.TelematicsMonthly
	}
	if req.IncludeIRC != nil {
		inp.IncludeIRC = *req.IncludeIRC
	}
	if req.IncludeBanking != nil {
		inp.IncludeBanking = *req.IncludeBanking
	}
	if req.IRCRate != nil {
		inp.IRCRate = *req.IRCRate
	}
	if req.BankingRate != nil {
		inp.BankingRate = *req.BankingRate
	}
	return ipa.Payload{Inputs: inp, AssetPrice: req.AssetPrice}
}

func writeJSON(w http.ResponseWriter, logger *zerolog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}
