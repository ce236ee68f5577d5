package handlers

import (
	"net/http"
	"strconv"

	"github.com/username/tradeguard/backend/src/engine"
	"github.com/username/tradeguard/backend/src/models"
	"github.com/username/tradeguard/backend/src/utils"
)

type FeeHandler struct{}

func NewFeeHandler() *FeeHandler { return &FeeHandler{} }

type feeQuoteResponse struct {
	Amount float64                `json:"amount"`
	Type   models.TransactionType `json:"type"`
	Fee    float64                `json:"fee"`
}

// HandleQuote prices an amount against the tiered fee schedule without
// recording anything.
func (h *FeeHandler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	amountStr := r.URL.Query().Get("amount")
	if amountStr == "" {
		utils.SendJSONError(w, "amount required", http.StatusBadRequest)
		return
	}
	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		utils.SendJSONError(w, "invalid amount", http.StatusBadRequest)
		return
	}

	txType := models.TransactionType(r.URL.Query().Get("type"))
	if !txType.Valid() {
		utils.SendJSONError(w, "invalid transaction type", http.StatusBadRequest)
		return
	}

	fee, err := engine.CalculateFee(amount, txType)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	utils.SendJSON(w, feeQuoteResponse{Amount: amount, Type: txType, Fee: fee}, http.StatusOK)
}
