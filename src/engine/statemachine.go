package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/username/tradeguard/backend/src/models"
)

// StateMachine validates candidate transactions and applies lifecycle
// transitions. It is pure: it holds no transaction state of its own and
// operates only on the candidate plus the caller-supplied recent history,
// so concurrent calls are safe as long as each supplies its own snapshot.
type StateMachine struct {
	dedupWindow time.Duration
	clock       Clock
}

// NewStateMachine builds a state machine using the given duplicate window
// and clock. A non-positive window falls back to DefaultDedupWindow.
func NewStateMachine(dedupWindow time.Duration, clock Clock) *StateMachine {
	if dedupWindow <= 0 {
		dedupWindow = DefaultDedupWindow
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &StateMachine{dedupWindow: dedupWindow, clock: clock}
}

// Submit runs the full acceptance pipeline for a candidate transaction:
// structural validation, duplicate check against the recent history of the
// same portfolio, fee computation and the pending -> completed transition.
// On success it returns a new immutable Transaction value; the caller is
// responsible for persisting it. On rejection the returned error unwraps to
// ErrValidationFailed, ErrDuplicateDetected or ErrComputation.
//
// Resubmitting an equivalent candidate against history containing the first
// result yields DuplicateError with the existing id, which makes retries
// idempotent rather than double-booking.
func (m *StateMachine) Submit(candidate models.Transaction, recentHistory []models.Transaction) (models.Transaction, error) {
	if codes := candidate.ValidationErrors(); len(codes) > 0 {
		return models.Transaction{}, &ValidationError{Codes: codes}
	}

	if candidate.ID == "" {
		candidate.ID = uuid.New().String()
	}
	if candidate.ExecutedAt.IsZero() {
		candidate.ExecutedAt = m.clock.Now()
	}

	// Only live transactions of the same portfolio participate in the
	// duplicate check: a failed or cancelled booking may legitimately be
	// retried as a fresh transaction.
	pool := make([]models.Transaction, 0, len(recentHistory)+1)
	for _, tx := range recentHistory {
		if tx.PortfolioID != candidate.PortfolioID || tx.ID == candidate.ID {
			continue
		}
		if tx.Status == models.StatusFailed || tx.Status == models.StatusCancelled {
			continue
		}
		pool = append(pool, tx)
	}
	pool = append(pool, candidate)

	for _, cluster := range FindDuplicates(pool, m.dedupWindow) {
		if !cluster.Contains(candidate.ID) {
			continue
		}
		for _, id := range cluster.TransactionIDs {
			if id != candidate.ID {
				return models.Transaction{}, &DuplicateError{ExistingID: id}
			}
		}
	}

	candidate.Total = LineTotal(candidate.Quantity, candidate.Price)
	fee, err := CalculateFee(candidate.Total, candidate.Type)
	if err != nil {
		return models.Transaction{}, err
	}
	candidate.Fees = fee

	candidate.Status = models.StatusPending
	return m.Transition(candidate, models.StatusCompleted)
}

// Transition moves a transaction to a terminal status and returns the new
// value. Only pending transactions may transition, and only to completed,
// failed or cancelled; anything else yields TransitionError. The input value
// is never mutated.
func (m *StateMachine) Transition(tx models.Transaction, target models.TransactionStatus) (models.Transaction, error) {
	if !target.Terminal() {
		return models.Transaction{}, &TransitionError{From: tx.Status, To: target}
	}
	if tx.Status != models.StatusPending {
		return models.Transaction{}, &TransitionError{From: tx.Status, To: target}
	}
	return tx.WithStatus(target), nil
}
