// Package plans exposes the four Smart Plans optimizers over HTTP. Each
// endpoint decodes its request, runs the model under the configured time
// budget, and answers 422 with the structured infeasibility shape when no
// plan exists. Successful solves also materialize their spreadsheet and
// CSV artifacts when an exporter is configured.
package plans

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/beechford-estate/smart-plans/pkg/export"
	"github.com/beechford-estate/smart-plans/pkg/models/api"
	"github.com/beechford-estate/smart-plans/pkg/services/optimizer"
)

type Handler struct {
	timeBudget time.Duration
	exporter   *export.Exporter
}

func NewHandler(timeBudget time.Duration, exporter *export.Exporter) *Handler {
	return &Handler{timeBudget: timeBudget, exporter: exporter}
}

func (h *Handler) DealPicker(w http.ResponseWriter, r *http.Request) {
	resp, ok := solve(h, w, r, optimizer.SolveDealPicker)
	if ok {
		h.export(r, func(e export.Exporter) error { return writeDealPickerArtifacts(e, resp) })
	}
}

func (h *Handler) DebtStack(w http.ResponseWriter, r *http.Request) {
	resp, ok := solve(h, w, r, optimizer.SolveDebtStack)
	if ok {
		h.export(r, func(e export.Exporter) error { return writeDebtStackArtifacts(e, resp) })
	}
}

func (h *Handler) LeasingMix(w http.ResponseWriter, r *http.Request) {
	resp, ok := solve(h, w, r, optimizer.SolveLeasingMix)
	if ok {
		h.export(r, func(e export.Exporter) error { return writeLeasingArtifacts(e, resp) })
	}
}

func (h *Handler) CapexPhasing(w http.ResponseWriter, r *http.Request) {
	resp, ok := solve(h, w, r, optimizer.SolveCapexPhasing)
	if ok {
		h.export(r, func(e export.Exporter) error { return writeCapexArtifacts(e, resp) })
	}
}

// export runs an artifact writer after the response has already been sent;
// artifact failures are logged, never surfaced to the client.
func (h *Handler) export(r *http.Request, write func(export.Exporter) error) {
	if h.exporter == nil {
		return
	}
	if err := write(*h.exporter); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write artifacts")
	}
}

func solve[Req, Resp any](h *Handler, w http.ResponseWriter, r *http.Request, fn func(context.Context, Req) (*Resp, *api.InfeasibleError, error)) (*Resp, bool) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req Req
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, logger, http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return nil, false
	}

	solveCtx := ctx
	if h.timeBudget > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, h.timeBudget)
		defer cancel()
	}

	resp, infErr, err := fn(solveCtx, req)
	if err != nil {
		logger.Error().Err(err).Msg("optimization failed")
		writeJSON(w, logger, http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return nil, false
	}
	if infErr != nil {
		writeJSON(w, logger, http.StatusUnprocessableEntity, infErr)
		return nil, false
	}
	writeJSON(w, logger, http.StatusOK, resp)
	return resp, true
}

func writeJSON(w http.ResponseWriter, logger *zerolog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}
