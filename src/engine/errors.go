package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/username/tradeguard/backend/src/models"
)

// Sentinel errors for the engine's rejection taxonomy. Callers branch with
// errors.Is and recover details with errors.As on the structured types below.
var (
	ErrValidationFailed  = errors.New("transaction validation failed")
	ErrDuplicateDetected = errors.New("duplicate transaction detected")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrComputation       = errors.New("computation error")
)

// ValidationError carries the structural field error codes of a rejected
// candidate. The caller fixes the fields and resubmits.
type ValidationError struct {
	Codes []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrValidationFailed, strings.Join(e.Codes, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// DuplicateError carries the id of the already-recorded transaction the
// candidate collided with. The existing transaction is authoritative.
type DuplicateError struct {
	ExistingID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%v: existing transaction %s", ErrDuplicateDetected, e.ExistingID)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicateDetected }

// TransitionError reports an attempted transition out of a terminal state or
// into an unrecognized target. It signals a programming error upstream and
// is surfaced, not retried.
type TransitionError struct {
	From models.TransactionStatus
	To   models.TransactionStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%v: %s -> %s", ErrIllegalTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrIllegalTransition }
