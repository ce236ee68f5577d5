package services

import (
	"context"
	"time"

	"github.com/username/tradeguard/backend/src/models"
)

// TransactionService is the write path of the engine: it feeds candidates
// through the state machine against fresh repository history and persists
// accepted results.
type TransactionService interface {
	// Submit runs the full acceptance pipeline for a candidate and persists
	// the completed transaction. Rejections surface the engine's error
	// taxonomy unchanged.
	Submit(ctx context.Context, candidate models.Transaction) (models.Transaction, error)

	// Transition moves an already-persisted transaction to a terminal
	// status and persists the new value.
	Transition(ctx context.Context, id string, target models.TransactionStatus) (models.Transaction, error)

	// History returns a portfolio's transactions within [from, to].
	History(ctx context.Context, portfolioID string, from, to time.Time) ([]models.Transaction, error)

	// InvalidatePortfolioCache drops cached read results for a portfolio.
	InvalidatePortfolioCache(portfolioID string)
}

// AnomalyService scans persisted history for suspicious patterns and pushes
// non-empty reports to the configured notifier.
type AnomalyService interface {
	ScanPortfolio(ctx context.Context, portfolioID string, from, to time.Time) (models.SuspicionReport, error)
}

// PortfolioService is the valuation read path: positions derived from
// completed transactions, valued with caller-supplied market prices.
type PortfolioService interface {
	// Holdings rebuilds the portfolio's positions from its completed buys
	// and sells and values them. Symbols missing from prices are valued at
	// their average cost.
	Holdings(ctx context.Context, portfolioID string, prices map[string]float64) ([]models.Holding, float64, error)
}

// ReportService formats a plain-text activity summary for a portfolio.
type ReportService interface {
	Generate(ctx context.Context, portfolioID string, from, to time.Time) (string, error)
}

// Notifier is the sink for suspicious-activity reports. Implementations are
// selected by configuration; see NewNotifier.
type Notifier interface {
	NotifySuspicion(ctx context.Context, report models.SuspicionReport) error
}
