// Package budget stores budgeted amounts per category and period. Saving a
// budget replaces the whole set.
package budget

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tdelacour/grandlivre/internal/domain/ledger"
)

// DB is the subset of pgxpool.Pool the repository needs. Satisfied by
// pgxmock in tests.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository handles database operations for budget items.
type Repository struct {
	db DB
}

// NewRepository creates a budget repository.
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// ListItems returns all budget items.
func (r *Repository) ListItems(ctx context.Context) ([]ledger.BudgetItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, category_id, budget_amount, period
		FROM budget_items
	`)
	if err != nil {
		return nil, fmt.Errorf("list budget items: %w", err)
	}
	defer rows.Close()

	var items []ledger.BudgetItem
	for rows.Next() {
		var item ledger.BudgetItem
		if err := rows.Scan(&item.ID, &item.CategoryID, &item.BudgetAmount, &item.Period); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// Replace swaps the stored budget for the given set. New rows are inserted
// before the old ones are deleted, all inside one transaction, so readers
// never observe an empty budget window.
func (r *Repository) Replace(ctx context.Context, items []ledger.BudgetItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin budget replace: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT id FROM budget_items`)
	if err != nil {
		return fmt.Errorf("list existing budget items: %w", err)
	}

	var oldIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		oldIDs = append(oldIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range items {
		item := &items[i]
		err := tx.QueryRow(ctx, `
			INSERT INTO budget_items (category_id, budget_amount, period)
			VALUES ($1, $2, $3)
			RETURNING id
		`, item.CategoryID, item.BudgetAmount, item.Period).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert budget item: %w", err)
		}
	}

	if len(oldIDs) > 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM budget_items WHERE id = ANY($1)`, oldIDs); err != nil {
			return fmt.Errorf("delete replaced budget items: %w", err)
		}
	}

	return tx.Commit(ctx)
}
