package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/username/tradeguard/backend/src/models"
	"github.com/username/tradeguard/backend/src/repository"
)

func TestGenerateReport(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewReportService(repo)
	ctx := context.Background()
	base := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)

	seed := []models.Transaction{
		{ID: "t1", PortfolioID: "pf-1", Type: models.TypeBuy, Symbol: "AAPL", Quantity: 10, Price: 100, Total: 1000, Fees: 10, ExecutedAt: base, Status: models.StatusCompleted},
		{ID: "t2", PortfolioID: "pf-1", Type: models.TypeBuy, Symbol: "GOOG", Quantity: 1, Price: 2800, Total: 2800, Fees: 28, ExecutedAt: base.Add(time.Minute), Status: models.StatusCompleted},
		{ID: "t3", PortfolioID: "pf-1", Type: models.TypeDividend, Symbol: "AAPL", Quantity: 0, Price: 0, Total: 55.50, Fees: 0, ExecutedAt: base.Add(2 * time.Minute), Status: models.StatusCompleted},
		{ID: "t4", PortfolioID: "pf-1", Type: models.TypeSell, Symbol: "AAPL", Quantity: 5, Price: 120, Total: 600, Fees: 6, ExecutedAt: base.Add(3 * time.Minute), Status: models.StatusCancelled},
	}
	for _, tx := range seed {
		if err := repo.Create(ctx, tx); err != nil {
			t.Fatal(err)
		}
	}

	report, err := svc.Generate(ctx, "pf-1", base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for _, want := range []string{
		"portfolio pf-1",
		"Transactions: 4",
		"buy",
		"dividend",
		"sell",
		"Fees charged: 44.00",
		"3 completed",
		"1 cancelled",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestGenerateReport_EmptyWindow(t *testing.T) {
	svc := NewReportService(repository.NewMemoryRepository())
	base := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)

	report, err := svc.Generate(context.Background(), "pf-1", base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.Contains(report, "Transactions: 0") {
		t.Errorf("empty report should state zero transactions:\n%s", report)
	}
}
