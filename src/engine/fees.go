package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/username/tradeguard/backend/src/models"
)

// feeTier is one marginal bracket of the fee schedule. upTo is the cumulative
// amount where the bracket ends; the last bracket is unbounded.
type feeTier struct {
	upTo decimal.Decimal
	rate decimal.Decimal
}

// The schedule is progressive: each slice of the amount is charged at its
// own bracket's rate, so the fee is continuous at bracket boundaries.
var feeTiers = []feeTier{
	{upTo: decimal.NewFromInt(10_000), rate: decimal.NewFromFloat(0.0100)},
	{upTo: decimal.NewFromInt(100_000), rate: decimal.NewFromFloat(0.0050)},
	{upTo: decimal.Decimal{}, rate: decimal.NewFromFloat(0.0025)},
}

// CalculateFee prices a transaction amount against the tiered schedule and
// returns the fee rounded to 2 decimal places, half up. Dividends and
// transfers are always free. A negative amount indicates malformed upstream
// data and yields ErrComputation.
func CalculateFee(amount float64, txType models.TransactionType) (float64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: negative amount %v", ErrComputation, amount)
	}
	if !txType.IsTrade() {
		return 0, nil
	}

	remaining := decimal.NewFromFloat(amount)
	fee := decimal.Zero
	floor := decimal.Zero
	for _, tier := range feeTiers {
		var slice decimal.Decimal
		if tier.upTo.IsZero() {
			// Unbounded top bracket takes whatever is left.
			slice = remaining
		} else {
			width := tier.upTo.Sub(floor)
			slice = decimal.Min(remaining, width)
			floor = tier.upTo
		}
		if slice.Sign() <= 0 {
			break
		}
		fee = fee.Add(slice.Mul(tier.rate))
		remaining = remaining.Sub(slice)
	}
	return fee.Round(2).InexactFloat64(), nil
}
