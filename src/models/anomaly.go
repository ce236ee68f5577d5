package models

import "time"

// AnomalyReason is the heuristic that flagged a transaction.
type AnomalyReason string

const (
	ReasonVelocity      AnomalyReason = "velocity"
	ReasonOffHours      AnomalyReason = "off-hours"
	ReasonUnusualAmount AnomalyReason = "unusual-amount"
)

// AnomalyFlag marks one transaction under one heuristic. A transaction
// flagged by several heuristics appears once per reason. Severity is the
// normalized distance past the heuristic's threshold, floored at zero.
type AnomalyFlag struct {
	TransactionID string        `json:"transactionId"`
	Reason        AnomalyReason `json:"reason"`
	Severity      float64       `json:"severity"`
}

// SuspicionReport is the outcome of scanning one portfolio's history over
// the window [From, To]. An empty Flags slice means nothing looked
// suspicious; it is not an error.
type SuspicionReport struct {
	PortfolioID string        `json:"portfolioId"`
	From        time.Time     `json:"from"`
	To          time.Time     `json:"to"`
	Flags       []AnomalyFlag `json:"flags"`
}

// Reasons collects the distinct reason codes attached to a transaction id.
func (r SuspicionReport) Reasons(txID string) []AnomalyReason {
	var reasons []AnomalyReason
	for _, f := range r.Flags {
		if f.TransactionID == txID {
			reasons = append(reasons, f.Reason)
		}
	}
	return reasons
}
