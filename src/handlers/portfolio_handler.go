package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/username/tradeguard/backend/src/logger"
	"github.com/username/tradeguard/backend/src/models"
	"github.com/username/tradeguard/backend/src/services"
	"github.com/username/tradeguard/backend/src/utils"
)

type PortfolioHandler struct {
	portfolioService services.PortfolioService
	reportService    services.ReportService
}

func NewPortfolioHandler(portfolioService services.PortfolioService, reportService services.ReportService) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService, reportService: reportService}
}

type holdingsRequest struct {
	// Prices maps symbol to current market price. Missing symbols are
	// valued at average cost.
	Prices map[string]float64 `json:"prices"`
}

type holdingsResponse struct {
	Holdings   []models.Holding `json:"holdings"`
	TotalValue float64          `json:"totalValue"`
}

// HandleGetHoldings rebuilds and values a portfolio's positions. The caller
// may POST current prices; an empty body values everything at cost.
func (h *PortfolioHandler) HandleGetHoldings(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "id")
	if portfolioID == "" {
		utils.SendJSONError(w, "portfolio id required", http.StatusBadRequest)
		return
	}

	var req holdingsRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	holdings, total, err := h.portfolioService.Holdings(r.Context(), portfolioID, req.Prices)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error computing holdings", "portfolioID", portfolioID, "error", err)
		utils.SendJSONError(w, "error computing holdings", http.StatusInternalServerError)
		return
	}
	if holdings == nil {
		holdings = []models.Holding{}
	}
	utils.SendJSON(w, holdingsResponse{Holdings: holdings, TotalValue: total}, http.StatusOK)
}

// HandleGetReport renders the plain-text activity report for a portfolio.
func (h *PortfolioHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
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

	report, err := h.reportService.Generate(r.Context(), portfolioID, from, to)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error generating report", "portfolioID", portfolioID, "error", err)
		utils.SendJSONError(w, "error generating report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(report))
}
