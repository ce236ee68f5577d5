package models

import "time"

// TransactionType classifies what a transaction does to a portfolio.
type TransactionType string

const (
	TypeBuy      TransactionType = "buy"
	TypeSell     TransactionType = "sell"
	TypeDividend TransactionType = "dividend"
	TypeTransfer TransactionType = "transfer"
)

// Valid reports whether t is one of the recognized transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeBuy, TypeSell, TypeDividend, TypeTransfer:
		return true
	}
	return false
}

// IsTrade reports whether t moves shares against the market (buy or sell).
// Trades require a positive quantity; other types may carry zero quantity.
func (t TransactionType) IsTrade() bool {
	return t == TypeBuy || t == TypeSell
}

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusCancelled TransactionStatus = "cancelled"
)

// Valid reports whether s is a recognized lifecycle status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted out of s.
// Every status except pending is terminal.
func (s TransactionStatus) Terminal() bool {
	return s.Valid() && s != StatusPending
}

// Transaction is a single brokerage event against a portfolio. Once created
// it is immutable: a status change produces a new value sharing the same ID,
// never a mutation of the original.
type Transaction struct {
	ID          string            `json:"id"`
	PortfolioID string            `json:"portfolioId"`
	Type        TransactionType   `json:"type"`
	Symbol      string            `json:"symbol"`
	Quantity    float64           `json:"quantity"`
	Price       float64           `json:"price"`
	Total       float64           `json:"total"`
	Fees        float64           `json:"fees"`
	ExecutedAt  time.Time         `json:"executedAt"`
	Status      TransactionStatus `json:"status"`
}

// WithStatus returns a copy of t carrying the given status. The receiver is
// left untouched.
func (t Transaction) WithStatus(s TransactionStatus) Transaction {
	t.Status = s
	return t
}

// Validation error codes returned by ValidationErrors.
const (
	ErrCodeSymbolRequired    = "symbol-required"
	ErrCodePortfolioRequired = "portfolio-required"
	ErrCodeInvalidType       = "invalid-type"
	ErrCodeInvalidQuantity   = "invalid-quantity"
	ErrCodeNegativePrice     = "negative-price"
)

// ValidationErrors checks the structural fields of a candidate transaction
// and returns the list of violated codes, empty when the candidate is sound.
// Derived fields (total, fees, status) are not inspected here; they are
// assigned during submission.
func (t Transaction) ValidationErrors() []string {
	var codes []string
	if t.Symbol == "" {
		codes = append(codes, ErrCodeSymbolRequired)
	}
	if t.PortfolioID == "" {
		codes = append(codes, ErrCodePortfolioRequired)
	}
	if !t.Type.Valid() {
		codes = append(codes, ErrCodeInvalidType)
	}
	switch {
	case t.Type.IsTrade() && t.Quantity <= 0:
		// Buys and sells must move a positive number of shares.
		codes = append(codes, ErrCodeInvalidQuantity)
	case !t.Type.IsTrade() && t.Quantity < 0:
		codes = append(codes, ErrCodeInvalidQuantity)
	}
	if t.Price < 0 {
		codes = append(codes, ErrCodeNegativePrice)
	}
	return codes
}
