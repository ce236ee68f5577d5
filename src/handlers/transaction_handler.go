package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/username/tradeguard/backend/src/engine"
	"github.com/username/tradeguard/backend/src/logger"
	"github.com/username/tradeguard/backend/src/models"
	"github.com/username/tradeguard/backend/src/repository"
	"github.com/username/tradeguard/backend/src/services"
	"github.com/username/tradeguard/backend/src/utils"
)

type TransactionHandler struct {
	txService services.TransactionService
}

func NewTransactionHandler(txService services.TransactionService) *TransactionHandler {
	return &TransactionHandler{txService: txService}
}

// HandleSubmit accepts a candidate transaction, runs it through the engine
// and persists the result. Rejections map onto the engine's error taxonomy:
// validation 400, duplicate 409, computation 422.
func (h *TransactionHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var candidate models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&candidate); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctxLogger := logger.FromContext(r.Context())
	ctxLogger.Info("Handling transaction submit", "portfolioID", candidate.PortfolioID, "symbol", candidate.Symbol)

	accepted, err := h.txService.Submit(r.Context(), candidate)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	utils.SendJSON(w, accepted, http.StatusCreated)
}

type transitionRequest struct {
	Status models.TransactionStatus `json:"status"`
}

// HandleTransition moves a persisted transaction to an explicit terminal
// status (failed or cancelled; completed is also permitted from pending).
func (h *TransactionHandler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.SendJSONError(w, "transaction id required", http.StatusBadRequest)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.txService.Transition(r.Context(), id, req.Status)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	utils.SendJSON(w, updated, http.StatusOK)
}

// HandleGetHistory returns a portfolio's transactions within a time window.
// Supports If-None-Match via an ETag over the result set.
func (h *TransactionHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	portfolioID := r.URL.Query().Get("portfolio_id")
	if portfolioID == "" {
		utils.SendJSONError(w, "portfolio_id required", http.StatusBadRequest)
		return
	}
	from, to, err := parseWindow(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	txs, err := h.txService.History(r.Context(), portfolioID, from, to)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error retrieving history", "portfolioID", portfolioID, "error", err)
		utils.SendJSONError(w, "error retrieving transaction history", http.StatusInternalServerError)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}

	if etag, err := utils.GenerateETag(txs); err == nil {
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}
	utils.SendJSON(w, txs, http.StatusOK)
}

// parseWindow reads optional from/to RFC3339 query parameters. Defaults:
// to = now, from = to minus 24 hours.
func parseWindow(r *http.Request) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.Add(-24 * time.Hour)

	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'to' timestamp: %s", raw)
		}
		to = parsed
		from = to.Add(-24 * time.Hour)
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'from' timestamp: %s", raw)
		}
		from = parsed
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("'from' must not be after 'to'")
	}
	return from, to, nil
}

// writeEngineError maps the engine and repository error taxonomy to HTTP
// status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	var validationErr *engine.ValidationError
	if errors.As(err, &validationErr) {
		utils.SendJSON(w, map[string]any{
			"error":  "validation failed",
			"codes":  validationErr.Codes,
			"reason": "ValidationFailed",
		}, http.StatusBadRequest)
		return
	}

	var duplicateErr *engine.DuplicateError
	if errors.As(err, &duplicateErr) {
		utils.SendJSON(w, map[string]any{
			"error":      "duplicate transaction",
			"existingId": duplicateErr.ExistingID,
			"reason":     "DuplicateDetected",
		}, http.StatusConflict)
		return
	}

	var transitionErr *engine.TransitionError
	if errors.As(err, &transitionErr) {
		utils.SendJSON(w, map[string]any{
			"error":  transitionErr.Error(),
			"reason": "IllegalTransition",
		}, http.StatusConflict)
		return
	}

	if errors.Is(err, engine.ErrComputation) {
		utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if errors.Is(err, repository.ErrNotFound) {
		utils.SendJSONError(w, "transaction not found", http.StatusNotFound)
		return
	}
	utils.SendJSONError(w, "internal error", http.StatusInternalServerError)
}
