package engine

import (
	"errors"
	"testing"

	"github.com/username/tradeguard/backend/src/models"
)

func TestCalculateFee_TieredSchedule(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		txType models.TransactionType
		want   float64
	}{
		{"zero amount", 0, models.TypeBuy, 0},
		{"inside first tier", 5_000, models.TypeBuy, 50.00},
		{"first tier boundary", 10_000, models.TypeBuy, 100.00},
		{"second tier", 50_000, models.TypeBuy, 100 + 40_000*0.005},
		{"second tier boundary", 100_000, models.TypeBuy, 100 + 450},
		{"spanning all tiers", 150_000, models.TypeBuy, 675.00},
		{"sell uses same schedule", 150_000, models.TypeSell, 675.00},
		{"dividend is free", 5_000, models.TypeDividend, 0},
		{"transfer is free", 250_000, models.TypeTransfer, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateFee(tt.amount, tt.txType)
			if err != nil {
				t.Fatalf("CalculateFee(%v, %s) error = %v", tt.amount, tt.txType, err)
			}
			if got != tt.want {
				t.Errorf("CalculateFee(%v, %s) = %v, want %v", tt.amount, tt.txType, got, tt.want)
			}
		})
	}
}

func TestCalculateFee_NegativeAmount(t *testing.T) {
	_, err := CalculateFee(-1, models.TypeBuy)
	if !errors.Is(err, ErrComputation) {
		t.Fatalf("CalculateFee(-1) error = %v, want ErrComputation", err)
	}
}

func TestCalculateFee_ContinuousAtBoundaries(t *testing.T) {
	// The schedule is marginal: crossing a boundary by one cent must not
	// jump the fee by more than that cent's marginal rate allows.
	for _, boundary := range []float64{10_000, 100_000} {
		below, err := CalculateFee(boundary-0.01, models.TypeBuy)
		if err != nil {
			t.Fatal(err)
		}
		above, err := CalculateFee(boundary+0.01, models.TypeBuy)
		if err != nil {
			t.Fatal(err)
		}
		if diff := above - below; diff > 0.01 {
			t.Errorf("fee jumps by %v at boundary %v", diff, boundary)
		}
	}
}

func TestCalculateFee_Monotonic(t *testing.T) {
	amounts := []float64{0, 1, 99.99, 5_000, 9_999.99, 10_000, 10_000.01,
		55_000, 99_999.99, 100_000, 100_000.01, 150_000, 1_000_000}
	prev := -1.0
	for _, amount := range amounts {
		fee, err := CalculateFee(amount, models.TypeBuy)
		if err != nil {
			t.Fatalf("CalculateFee(%v) error = %v", amount, err)
		}
		if fee < prev {
			t.Errorf("CalculateFee(%v) = %v, smaller than fee for lower amount (%v)", amount, fee, prev)
		}
		prev = fee
	}
}
