package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/username/tradeguard/backend/src/models"
)

var testNow = time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)

func newTestMachine() *StateMachine {
	return NewStateMachine(60*time.Second, FixedClock(testNow))
}

func candidate() models.Transaction {
	return models.Transaction{
		ID:          "cand-1",
		PortfolioID: "pf-1",
		Type:        models.TypeBuy,
		Symbol:      "AAPL",
		Quantity:    10,
		Price:       100,
		ExecutedAt:  testNow,
	}
}

func TestSubmit_AcceptsCleanCandidate(t *testing.T) {
	m := newTestMachine()
	got, err := m.Submit(candidate(), nil)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got.Status != models.StatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
	if got.Total != 1000.00 {
		t.Errorf("total = %v, want 1000.00", got.Total)
	}
	if got.Fees != 10.00 {
		t.Errorf("fees = %v, want 10.00 (1%% first tier)", got.Fees)
	}
}

func TestSubmit_AssignsIDAndTimestamp(t *testing.T) {
	m := newTestMachine()
	c := candidate()
	c.ID = ""
	c.ExecutedAt = time.Time{}

	got, err := m.Submit(c, nil)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got.ID == "" {
		t.Error("Submit did not assign an id")
	}
	if !got.ExecutedAt.Equal(testNow) {
		t.Errorf("executedAt = %v, want clock time %v", got.ExecutedAt, testNow)
	}
}

func TestSubmit_ValidationFailures(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.Transaction)
		wantCode string
	}{
		{"missing symbol", func(c *models.Transaction) { c.Symbol = "" }, models.ErrCodeSymbolRequired},
		{"missing portfolio", func(c *models.Transaction) { c.PortfolioID = "" }, models.ErrCodePortfolioRequired},
		{"unknown type", func(c *models.Transaction) { c.Type = "short" }, models.ErrCodeInvalidType},
		{"zero quantity buy", func(c *models.Transaction) { c.Quantity = 0 }, models.ErrCodeInvalidQuantity},
		{"negative quantity dividend", func(c *models.Transaction) { c.Type = models.TypeDividend; c.Quantity = -1 }, models.ErrCodeInvalidQuantity},
		{"negative price", func(c *models.Transaction) { c.Price = -0.01 }, models.ErrCodeNegativePrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine()
			c := candidate()
			tt.mutate(&c)

			_, err := m.Submit(c, nil)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Submit() error = %v, want ValidationError", err)
			}
			found := false
			for _, code := range validationErr.Codes {
				if code == tt.wantCode {
					found = true
				}
			}
			if !found {
				t.Errorf("codes = %v, want to contain %q", validationErr.Codes, tt.wantCode)
			}
		})
	}
}

func TestSubmit_ZeroQuantityDividendAllowed(t *testing.T) {
	m := newTestMachine()
	c := candidate()
	c.Type = models.TypeDividend
	c.Quantity = 0
	c.Price = 0

	got, err := m.Submit(c, nil)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got.Fees != 0 {
		t.Errorf("dividend fees = %v, want 0", got.Fees)
	}
}

func TestSubmit_RejectsDuplicate(t *testing.T) {
	m := newTestMachine()
	existing := candidate()
	existing.ID = "existing-1"
	existing.Status = models.StatusCompleted
	existing.ExecutedAt = testNow.Add(-30 * time.Second)

	c := candidate()
	c.ID = "cand-2"

	_, err := m.Submit(c, []models.Transaction{existing})
	var duplicateErr *DuplicateError
	if !errors.As(err, &duplicateErr) {
		t.Fatalf("Submit() error = %v, want DuplicateError", err)
	}
	if duplicateErr.ExistingID != "existing-1" {
		t.Errorf("ExistingID = %s, want existing-1", duplicateErr.ExistingID)
	}
}

func TestSubmit_IgnoresDeadHistory(t *testing.T) {
	// A failed or cancelled booking of the same trade does not block a
	// fresh submission.
	for _, status := range []models.TransactionStatus{models.StatusFailed, models.StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			m := newTestMachine()
			dead := candidate()
			dead.ID = "dead-1"
			dead.Status = status

			got, err := m.Submit(candidate(), []models.Transaction{dead})
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			if got.Status != models.StatusCompleted {
				t.Errorf("status = %s, want completed", got.Status)
			}
		})
	}
}

func TestSubmit_IgnoresOtherPortfolios(t *testing.T) {
	m := newTestMachine()
	other := candidate()
	other.ID = "other-1"
	other.PortfolioID = "pf-2"
	other.Status = models.StatusCompleted

	if _, err := m.Submit(candidate(), []models.Transaction{other}); err != nil {
		t.Fatalf("Submit() error = %v, identical trade on another portfolio must not collide", err)
	}
}

func TestSubmit_OutsideWindowNotDuplicate(t *testing.T) {
	m := newTestMachine()
	old := candidate()
	old.ID = "old-1"
	old.Status = models.StatusCompleted
	old.ExecutedAt = testNow.Add(-61 * time.Second)

	if _, err := m.Submit(candidate(), []models.Transaction{old}); err != nil {
		t.Fatalf("Submit() error = %v, trade outside the window must not collide", err)
	}
}

func TestSubmit_DoesNotMutateInput(t *testing.T) {
	m := newTestMachine()
	c := candidate()
	if _, err := m.Submit(c, nil); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if c.Status != "" || c.Total != 0 || c.Fees != 0 {
		t.Errorf("input candidate mutated: %+v", c)
	}
}

func TestTransition_FromPending(t *testing.T) {
	m := newTestMachine()
	pending := candidate().WithStatus(models.StatusPending)

	for _, target := range []models.TransactionStatus{models.StatusCompleted, models.StatusFailed, models.StatusCancelled} {
		got, err := m.Transition(pending, target)
		if err != nil {
			t.Errorf("Transition(pending, %s) error = %v", target, err)
			continue
		}
		if got.Status != target {
			t.Errorf("status = %s, want %s", got.Status, target)
		}
		if pending.Status != models.StatusPending {
			t.Error("Transition mutated its input")
		}
	}
}

func TestTransition_TerminalStatesAreFinal(t *testing.T) {
	m := newTestMachine()
	for _, from := range []models.TransactionStatus{models.StatusCompleted, models.StatusFailed, models.StatusCancelled} {
		for _, target := range []models.TransactionStatus{models.StatusCompleted, models.StatusFailed, models.StatusCancelled, models.StatusPending} {
			_, err := m.Transition(candidate().WithStatus(from), target)
			if !errors.Is(err, ErrIllegalTransition) {
				t.Errorf("Transition(%s, %s) error = %v, want ErrIllegalTransition", from, target, err)
			}
		}
	}
}

func TestTransition_RejectsBadTargets(t *testing.T) {
	m := newTestMachine()
	pending := candidate().WithStatus(models.StatusPending)

	for _, target := range []models.TransactionStatus{models.StatusPending, "archived", ""} {
		_, err := m.Transition(pending, target)
		var transitionErr *TransitionError
		if !errors.As(err, &transitionErr) {
			t.Errorf("Transition(pending, %q) error = %v, want TransitionError", target, err)
		}
	}
}
