package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/username/tradeguard/backend/src/models"
)

// SQLiteRepository persists transactions in the transactions table created
// by the migrations under db/migrations. Timestamps are stored as Unix
// nanoseconds so window queries compare numerically.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, tx models.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, portfolio_id, type, symbol, quantity, price, total, fees, executed_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		tx.ID, tx.PortfolioID, string(tx.Type), tx.Symbol, tx.Quantity, tx.Price,
		tx.Total, tx.Fees, tx.ExecutedAt.UnixNano(), string(tx.Status),
	)
	if err != nil {
		return fmt.Errorf("inserting transaction %s: %w", tx.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking insert result for %s: %w", tx.ID, err)
	}
	if affected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, tx models.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET status = ?, total = ?, fees = ? WHERE id = ?`,
		string(tx.Status), tx.Total, tx.Fees, tx.ID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction %s: %w", tx.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result for %s: %w", tx.ID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, portfolio_id, type, symbol, quantity, price, total, fees, executed_at, status
		FROM transactions WHERE id = ?`, id)

	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, ErrNotFound
	}
	if err != nil {
		return models.Transaction{}, fmt.Errorf("fetching transaction %s: %w", id, err)
	}
	return tx, nil
}

func (r *SQLiteRepository) ListByPortfolio(ctx context.Context, portfolioID string, from, to time.Time) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, portfolio_id, type, symbol, quantity, price, total, fees, executed_at, status
		FROM transactions
		WHERE portfolio_id = ? AND executed_at >= ? AND executed_at <= ?
		ORDER BY executed_at ASC`,
		portfolioID, from.UnixNano(), to.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("listing transactions for portfolio %s: %w", portfolioID, err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction row: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}
	return out, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (models.Transaction, error) {
	var tx models.Transaction
	var txType, status string
	var executedAt int64
	if err := s.Scan(&tx.ID, &tx.PortfolioID, &txType, &tx.Symbol, &tx.Quantity,
		&tx.Price, &tx.Total, &tx.Fees, &executedAt, &status); err != nil {
		return models.Transaction{}, err
	}
	tx.Type = models.TransactionType(txType)
	tx.Status = models.TransactionStatus(status)
	tx.ExecutedAt = time.Unix(0, executedAt).UTC()
	return tx, nil
}
