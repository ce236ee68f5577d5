package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/username/tradeguard/backend/src/engine"
	"github.com/username/tradeguard/backend/src/models"
	"github.com/username/tradeguard/backend/src/repository"
)

type portfolioServiceImpl struct {
	repo  repository.TransactionRepository
	clock engine.Clock
}

func NewPortfolioService(repo repository.TransactionRepository, clock engine.Clock) PortfolioService {
	return &portfolioServiceImpl{repo: repo, clock: clock}
}

// position accumulates one symbol's completed buys and sells while walking
// the history in execution order.
type position struct {
	quantity  float64
	costBasis float64
}

func (s *portfolioServiceImpl) Holdings(ctx context.Context, portfolioID string, prices map[string]float64) ([]models.Holding, float64, error) {
	history, err := s.repo.ListByPortfolio(ctx, portfolioID, time.Time{}, s.clock.Now())
	if err != nil {
		return nil, 0, fmt.Errorf("loading history for portfolio %s: %w", portfolioID, err)
	}

	positions := make(map[string]*position)
	for _, tx := range history {
		if tx.Status != models.StatusCompleted || !tx.Type.IsTrade() {
			continue
		}
		pos, ok := positions[tx.Symbol]
		if !ok {
			pos = &position{}
			positions[tx.Symbol] = pos
		}
		switch tx.Type {
		case models.TypeBuy:
			pos.quantity += tx.Quantity
			pos.costBasis += tx.Total
		case models.TypeSell:
			// Sells release cost basis at the running average.
			if pos.quantity > 0 {
				avg := pos.costBasis / pos.quantity
				pos.costBasis -= avg * tx.Quantity
			}
			pos.quantity -= tx.Quantity
		}
	}

	var holdings []models.Holding
	for symbol, pos := range positions {
		if pos.quantity <= 0 {
			continue
		}
		avgCost := engine.Round2(pos.costBasis / pos.quantity)
		price, ok := prices[symbol]
		if !ok {
			// No quote supplied: value the position at cost.
			price = avgCost
		}
		holdings = append(holdings, engine.ValueHolding(models.Holding{
			Symbol:       symbol,
			Quantity:     pos.quantity,
			AverageCost:  avgCost,
			CurrentPrice: price,
		}))
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })

	return holdings, engine.PortfolioValue(holdings), nil
}
