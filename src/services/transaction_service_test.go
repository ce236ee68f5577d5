package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/tradeguard/backend/src/engine"
	"github.com/username/tradeguard/backend/src/logger"
	"github.com/username/tradeguard/backend/src/models"
	"github.com/username/tradeguard/backend/src/repository"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	m.Run()
}

var serviceNow = time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)

func newTestService(repo repository.TransactionRepository) TransactionService {
	clock := engine.FixedClock(serviceNow)
	machine := engine.NewStateMachine(60*time.Second, clock)
	historyCache := cache.New(time.Minute, time.Minute)
	return NewTransactionService(repo, machine, clock, 60*time.Second, historyCache)
}

func serviceCandidate() models.Transaction {
	return models.Transaction{
		PortfolioID: "pf-1",
		Type:        models.TypeBuy,
		Symbol:      "AAPL",
		Quantity:    10,
		Price:       100,
		ExecutedAt:  serviceNow,
	}
}

func TestSubmit_PersistsAcceptedTransaction(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	accepted, err := svc.Submit(ctx, serviceCandidate())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if accepted.ID == "" {
		t.Fatal("Submit() returned transaction without id")
	}

	stored, err := repo.GetByID(ctx, accepted.ID)
	if err != nil {
		t.Fatalf("accepted transaction not persisted: %v", err)
	}
	if stored.Status != models.StatusCompleted {
		t.Errorf("persisted status = %s, want completed", stored.Status)
	}
	if stored.Total != 1000 || stored.Fees != 10 {
		t.Errorf("persisted total/fees = %v/%v, want 1000/10", stored.Total, stored.Fees)
	}
}

func TestSubmit_SecondEquivalentSubmissionIsRejected(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	first, err := svc.Submit(ctx, serviceCandidate())
	if err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}

	second := serviceCandidate()
	second.ExecutedAt = serviceNow.Add(10 * time.Second)
	_, err = svc.Submit(ctx, second)

	var duplicateErr *engine.DuplicateError
	if !errors.As(err, &duplicateErr) {
		t.Fatalf("second Submit() error = %v, want DuplicateError", err)
	}
	if duplicateErr.ExistingID != first.ID {
		t.Errorf("ExistingID = %s, want %s", duplicateErr.ExistingID, first.ID)
	}
}

func TestSubmit_SameIDRetryReturnsStoredTransaction(t *testing.T) {
	// A retry carrying the id of an already-persisted transaction does not
	// double-book; the stored value is authoritative.
	repo := repository.NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	c := serviceCandidate()
	c.ID = "fixed-id"
	first, err := svc.Submit(ctx, c)
	if err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}

	again, err := svc.Submit(ctx, c)
	if err != nil {
		t.Fatalf("retry Submit() error = %v", err)
	}
	if again.ID != first.ID || again.Status != first.Status {
		t.Errorf("retry returned %+v, want stored %+v", again, first)
	}
}

func TestSubmit_AfterCancellationSucceeds(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	c := serviceCandidate()
	c.ID = "tx-cancel"
	c.Status = models.StatusPending
	if err := repo.Create(ctx, c); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Transition(ctx, "tx-cancel", models.StatusCancelled); err != nil {
		t.Fatalf("Transition() error = %v", err)
	}

	resubmit := serviceCandidate()
	resubmit.ExecutedAt = serviceNow.Add(5 * time.Second)
	if _, err := svc.Submit(ctx, resubmit); err != nil {
		t.Fatalf("Submit() after cancellation error = %v, want acceptance", err)
	}
}

func TestTransition_PersistsAndRejectsTerminal(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	c := serviceCandidate()
	c.ID = "tx-1"
	c.Status = models.StatusPending
	if err := repo.Create(ctx, c); err != nil {
		t.Fatal(err)
	}

	updated, err := svc.Transition(ctx, "tx-1", models.StatusFailed)
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if updated.Status != models.StatusFailed {
		t.Errorf("status = %s, want failed", updated.Status)
	}

	_, err = svc.Transition(ctx, "tx-1", models.StatusCompleted)
	if !errors.Is(err, engine.ErrIllegalTransition) {
		t.Errorf("Transition() from terminal error = %v, want ErrIllegalTransition", err)
	}
}

func TestTransition_UnknownID(t *testing.T) {
	svc := newTestService(repository.NewMemoryRepository())
	_, err := svc.Transition(context.Background(), "nope", models.StatusFailed)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Transition(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestHistory_CacheInvalidatedOnWrite(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	from := serviceNow.Add(-time.Hour)
	to := serviceNow.Add(time.Hour)

	first, err := svc.History(ctx, "pf-1", from, to)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(first) != 0 {
		t.Fatalf("History() = %d transactions, want 0", len(first))
	}

	if _, err := svc.Submit(ctx, serviceCandidate()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	second, err := svc.History(ctx, "pf-1", from, to)
	if err != nil {
		t.Fatalf("History() after write error = %v", err)
	}
	if len(second) != 1 {
		t.Errorf("History() after write = %d transactions, want 1 (stale cache?)", len(second))
	}
}
