package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/username/tradeguard/backend/src/logger"
	"github.com/username/tradeguard/backend/src/services"
	"github.com/username/tradeguard/backend/src/utils"
)

type AnomalyHandler struct {
	anomalyService services.AnomalyService
}

func NewAnomalyHandler(anomalyService services.AnomalyService) *AnomalyHandler {
	return &AnomalyHandler{anomalyService: anomalyService}
}

// HandleScan runs the anomaly heuristics over a portfolio's history window
// and returns the suspicion report. Non-empty reports are also pushed to the
// configured notifier by the service.
func (h *AnomalyHandler) HandleScan(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "id")
	if portfolioID == "" {
		utils.SendJSONError(w, "portfolio id required", http.StatusBadRequest)
		return
	}
	from, to, err := parseWindow(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.FromContext(r.Context()).Info("Handling anomaly scan", "portfolioID", portfolioID)

	report, err := h.anomalyService.ScanPortfolio(r.Context(), portfolioID, from, to)
	if err != nil {
		logger.FromContext(r.Context()).Error("Anomaly scan failed", "portfolioID", portfolioID, "error", err)
		utils.SendJSONError(w, "anomaly scan failed", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, report, http.StatusOK)
}
