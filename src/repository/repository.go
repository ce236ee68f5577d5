package repository

import (
	"context"
	"errors"
	"time"

	"github.com/username/tradeguard/backend/src/models"
)

// Common repository errors.
var (
	ErrNotFound      = errors.New("transaction not found")
	ErrAlreadyExists = errors.New("transaction already exists")
)

// TransactionRepository owns transaction storage. Create is create-if-absent
// keyed on id, which is what makes engine-level retries idempotent: the
// second attempt of the same id surfaces ErrAlreadyExists instead of a
// second row.
//
// ListByPortfolio returns the portfolio's transactions with executedAt in
// [from, to], ordered by executedAt ascending. Implementations must
// serialize writes per portfolio so a duplicate check plus persist reads a
// consistent history.
type TransactionRepository interface {
	Create(ctx context.Context, tx models.Transaction) error
	Update(ctx context.Context, tx models.Transaction) error
	GetByID(ctx context.Context, id string) (models.Transaction, error)
	ListByPortfolio(ctx context.Context, portfolioID string, from, to time.Time) ([]models.Transaction, error)
}
