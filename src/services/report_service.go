package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/username/tradeguard/backend/src/engine"
	"github.com/username/tradeguard/backend/src/models"
	"github.com/username/tradeguard/backend/src/repository"
)

type reportServiceImpl struct {
	repo repository.TransactionRepository
}

func NewReportService(repo repository.TransactionRepository) ReportService {
	return &reportServiceImpl{repo: repo}
}

// Generate renders a plain-text activity summary for one portfolio: per-type
// counts and totals, aggregate fees, and a closing status breakdown. Amounts
// are fixed-point with two decimals; no locale formatting.
func (s *reportServiceImpl) Generate(ctx context.Context, portfolioID string, from, to time.Time) (string, error) {
	history, err := s.repo.ListByPortfolio(ctx, portfolioID, from, to)
	if err != nil {
		return "", fmt.Errorf("loading history for report on %s: %w", portfolioID, err)
	}

	type bucket struct {
		count int
		total float64
	}
	byType := make(map[models.TransactionType]*bucket)
	byStatus := make(map[models.TransactionStatus]int)
	var totalFees float64
	for _, tx := range history {
		b, ok := byType[tx.Type]
		if !ok {
			b = &bucket{}
			byType[tx.Type] = b
		}
		b.count++
		b.total += tx.Total
		totalFees += tx.Fees
		byStatus[tx.Status]++
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Transaction report for portfolio %s\n", portfolioID)
	fmt.Fprintf(&sb, "Window: %s to %s\n", from.Format(time.RFC3339), to.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Transactions: %d\n\n", len(history))

	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		b := byType[models.TransactionType(t)]
		fmt.Fprintf(&sb, "%-10s %4d  total %12.2f\n", t, b.count, engine.Round2(b.total))
	}

	fmt.Fprintf(&sb, "\nFees charged: %.2f\n", engine.Round2(totalFees))
	fmt.Fprintf(&sb, "Status: %d completed, %d pending, %d failed, %d cancelled\n",
		byStatus[models.StatusCompleted], byStatus[models.StatusPending],
		byStatus[models.StatusFailed], byStatus[models.StatusCancelled])
	return sb.String(), nil
}
