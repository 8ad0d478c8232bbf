// Package repository persists normalized ledger transactions. The import
// pipeline only ever inserts through here; identity is assigned by the
// database.
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tdelacour/grandlivre/internal/domain/ledger"
)

// DB is the subset of pgxpool.Pool the repository needs. Satisfied by
// pgxmock in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// TransactionRepository defines the persistence operations the import and
// reporting paths rely on.
type TransactionRepository interface {
	InsertTransaction(ctx context.Context, tx *ledger.Transaction) error
	ListTransactions(ctx context.Context) ([]ledger.Transaction, error)
	ListTransactionsByFiscalYear(ctx context.Context, fiscalYearID uuid.UUID) ([]ledger.Transaction, error)
	UpdateTransactionCategory(ctx context.Context, id uuid.UUID, categoryID *uuid.UUID) error
	ListFiscalYears(ctx context.Context) ([]ledger.FiscalYear, error)
}

// PostgresRepository implements TransactionRepository on PostgreSQL.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository creates a transaction repository.
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Nullable text columns coalesce to the empty string, the domain encoding
// for an absent field.
const transactionColumns = `
	id, ecriture_date, ecriture_lib, debit, credit, amount, type,
	COALESCE(journal_code, ''), COALESCE(journal_lib, ''),
	COALESCE(journal_type, ''), COALESCE(ecriture_num, ''),
	COALESCE(compte_num, ''), COALESCE(compte_lib, ''),
	COALESCE(comp_aux_num, ''), COALESCE(comp_aux_lib, ''),
	COALESCE(piece_ref, ''), COALESCE(piece_date, ''),
	COALESCE(ecriture_let, ''), COALESCE(date_let, ''), COALESCE(valid_date, ''),
	montant_devise, COALESCE(idevise, ''), COALESCE(num_doc, ''),
	category_id, fiscal_year_id, source, created_at`

// InsertTransaction stores one transaction and assigns its ID.
func (r *PostgresRepository) InsertTransaction(ctx context.Context, tx *ledger.Transaction) error {
	query := `
		INSERT INTO transactions (
			ecriture_date, ecriture_lib, debit, credit, amount, type,
			journal_code, journal_lib, journal_type, ecriture_num,
			compte_num, compte_lib, comp_aux_num, comp_aux_lib,
			piece_ref, piece_date, ecriture_let, date_let, valid_date,
			montant_devise, idevise, num_doc,
			category_id, fiscal_year_id, source
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''),
			NULLIF($11, ''), NULLIF($12, ''), NULLIF($13, ''), NULLIF($14, ''),
			NULLIF($15, ''), NULLIF($16, ''), NULLIF($17, ''), NULLIF($18, ''), NULLIF($19, ''),
			$20, NULLIF($21, ''), NULLIF($22, ''),
			$23, $24, $25
		)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		tx.EcritureDate, tx.EcritureLib, tx.Debit, tx.Credit, tx.Amount, tx.Type,
		tx.JournalCode, tx.JournalLib, tx.JournalType, tx.EcritureNum,
		tx.CompteNum, tx.CompteLib, tx.CompAuxNum, tx.CompAuxLib,
		tx.PieceRef, tx.PieceDate, tx.EcritureLet, tx.DateLet, tx.ValidDate,
		tx.MontantDevise, tx.IDevise, tx.NumDoc,
		tx.CategoryID, tx.FiscalYearID, tx.Source,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListTransactions returns every stored transaction, oldest écriture first.
func (r *PostgresRepository) ListTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY ecriture_date, created_at
	`
	return r.listTransactions(ctx, query)
}

// ListTransactionsByFiscalYear returns the transactions assigned to one
// fiscal year.
func (r *PostgresRepository) ListTransactionsByFiscalYear(ctx context.Context, fiscalYearID uuid.UUID) ([]ledger.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE fiscal_year_id = $1
		ORDER BY ecriture_date, created_at
	`
	return r.listTransactions(ctx, query, fiscalYearID)
}

func (r *PostgresRepository) listTransactions(ctx context.Context, query string, args ...any) ([]ledger.Transaction, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []ledger.Transaction
	for rows.Next() {
		var t ledger.Transaction
		if err := rows.Scan(
			&t.ID, &t.EcritureDate, &t.EcritureLib, &t.Debit, &t.Credit, &t.Amount, &t.Type,
			&t.JournalCode, &t.JournalLib, &t.JournalType, &t.EcritureNum,
			&t.CompteNum, &t.CompteLib, &t.CompAuxNum, &t.CompAuxLib,
			&t.PieceRef, &t.PieceDate, &t.EcritureLet, &t.DateLet, &t.ValidDate,
			&t.MontantDevise, &t.IDevise, &t.NumDoc,
			&t.CategoryID, &t.FiscalYearID, &t.Source, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	return transactions, rows.Err()
}

// UpdateTransactionCategory reassigns (or clears) a transaction's category.
// Recategorization is an editing-surface operation, not part of the import
// pipeline, which never mutates stored rows.
func (r *PostgresRepository) UpdateTransactionCategory(ctx context.Context, id uuid.UUID, categoryID *uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE transactions SET category_id = $2 WHERE id = $1`,
		id, categoryID,
	)
	if err != nil {
		return fmt.Errorf("update transaction category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListFiscalYears returns the configured fiscal years ordered by start date.
func (r *PostgresRepository) ListFiscalYears(ctx context.Context) ([]ledger.FiscalYear, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, start_date, end_date, is_current
		FROM fiscal_years
		ORDER BY start_date
	`)
	if err != nil {
		return nil, fmt.Errorf("list fiscal years: %w", err)
	}
	defer rows.Close()

	var years []ledger.FiscalYear
	for rows.Next() {
		var fy ledger.FiscalYear
		if err := rows.Scan(&fy.ID, &fy.Name, &fy.StartDate, &fy.EndDate, &fy.IsCurrent); err != nil {
			return nil, err
		}
		years = append(years, fy)
	}

	return years, rows.Err()
}
