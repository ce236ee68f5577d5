package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/username/tradeguard/backend/src/models"
)

// MemoryRepository is an in-memory TransactionRepository guarded by a single
// mutex. It backs tests and local development; production wiring uses the
// sqlite repository.
type MemoryRepository struct {
	mu  sync.RWMutex
	txs map[string]models.Transaction
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{txs: make(map[string]models.Transaction)}
}

func (r *MemoryRepository) Create(_ context.Context, tx models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.txs[tx.ID]; exists {
		return ErrAlreadyExists
	}
	r.txs[tx.ID] = tx
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, tx models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.txs[tx.ID]; !exists {
		return ErrNotFound
	}
	r.txs[tx.ID] = tx
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, exists := r.txs[id]
	if !exists {
		return models.Transaction{}, ErrNotFound
	}
	return tx, nil
}

func (r *MemoryRepository) ListByPortfolio(_ context.Context, portfolioID string, from, to time.Time) ([]models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Transaction
	for _, tx := range r.txs {
		if tx.PortfolioID != portfolioID {
			continue
		}
		if tx.ExecutedAt.Before(from) || tx.ExecutedAt.After(to) {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExecutedAt.Before(out[j].ExecutedAt)
	})
	return out, nil
}
