package engine

import (
	"github.com/shopspring/decimal"

	"github.com/username/tradeguard/backend/src/models"
)

// Round2 rounds a currency value to 2 decimal places, half up. All derived
// money fields (total, fees, market value) pass through here so binary float
// artifacts never reach a caller.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// LineTotal computes quantity * price rounded to 2 decimal places.
func LineTotal(quantity, price float64) float64 {
	q := decimal.NewFromFloat(quantity)
	p := decimal.NewFromFloat(price)
	return q.Mul(p).Round(2).InexactFloat64()
}

// ValueHolding returns a copy of h with MarketValue, GainLoss and
// GainLossPercent recomputed from quantity, current price and average cost.
func ValueHolding(h models.Holding) models.Holding {
	qty := decimal.NewFromFloat(h.Quantity)
	market := qty.Mul(decimal.NewFromFloat(h.CurrentPrice)).Round(2)
	cost := qty.Mul(decimal.NewFromFloat(h.AverageCost)).Round(2)
	gain := market.Sub(cost)

	h.MarketValue = market.InexactFloat64()
	h.GainLoss = gain.InexactFloat64()
	if cost.IsZero() {
		h.GainLossPercent = 0
	} else {
		h.GainLossPercent = gain.Div(cost).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}
	return h
}

// PortfolioValue sums the market value of every holding, valuing each one
// on the way, and returns the total rounded to 2 decimal places.
func PortfolioValue(holdings []models.Holding) float64 {
	total := decimal.Zero
	for _, h := range holdings {
		valued := ValueHolding(h)
		total = total.Add(decimal.NewFromFloat(valued.MarketValue))
	}
	return total.Round(2).InexactFloat64()
}
