package engine

import (
	"testing"

	"github.com/username/tradeguard/backend/src/models"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"no rounding needed", 10.25, 10.25},
		{"half rounds up", 2.675, 2.68},
		{"binary float artifact", 0.1 + 0.2, 0.30},
		{"truncates extra precision", 99.999, 100.00},
		{"integer passes through", 1500, 1500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Round2(tt.in); got != tt.want {
				t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLineTotal(t *testing.T) {
	tests := []struct {
		quantity, price, want float64
	}{
		{10, 100, 1000},
		{3, 0.1, 0.30},
		{1.5, 33.333, 50.00},
		{0, 500, 0},
	}
	for _, tt := range tests {
		if got := LineTotal(tt.quantity, tt.price); got != tt.want {
			t.Errorf("LineTotal(%v, %v) = %v, want %v", tt.quantity, tt.price, got, tt.want)
		}
	}
}

func TestValueHolding(t *testing.T) {
	got := ValueHolding(models.Holding{
		Symbol:       "AAPL",
		Quantity:     10,
		AverageCost:  100,
		CurrentPrice: 150,
	})
	if got.MarketValue != 1500 {
		t.Errorf("MarketValue = %v, want 1500", got.MarketValue)
	}
	if got.GainLoss != 500 {
		t.Errorf("GainLoss = %v, want 500", got.GainLoss)
	}
	if got.GainLossPercent != 50 {
		t.Errorf("GainLossPercent = %v, want 50", got.GainLossPercent)
	}
}

func TestValueHolding_ZeroCost(t *testing.T) {
	got := ValueHolding(models.Holding{Symbol: "GIFT", Quantity: 5, AverageCost: 0, CurrentPrice: 10})
	if got.MarketValue != 50 {
		t.Errorf("MarketValue = %v, want 50", got.MarketValue)
	}
	if got.GainLossPercent != 0 {
		t.Errorf("GainLossPercent = %v, want 0 when cost basis is zero", got.GainLossPercent)
	}
}

func TestPortfolioValue(t *testing.T) {
	holdings := []models.Holding{
		{Symbol: "AAPL", Quantity: 10, AverageCost: 100, CurrentPrice: 150},
		{Symbol: "GOOG", Quantity: 2, AverageCost: 2800, CurrentPrice: 2900},
	}
	if got, want := PortfolioValue(holdings), 1500.0+5800.0; got != want {
		t.Errorf("PortfolioValue() = %v, want %v", got, want)
	}
	if got := PortfolioValue(nil); got != 0 {
		t.Errorf("PortfolioValue(nil) = %v, want 0", got)
	}
}
