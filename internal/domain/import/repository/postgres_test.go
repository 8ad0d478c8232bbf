package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdelacour/grandlivre/internal/domain/ledger"
)

func TestInsertTransaction_AssignsIdentity(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	credit := decimal.RequireFromString("1500")
	tx := &ledger.Transaction{
		EcritureDate: "20240115",
		EcritureLib:  "Facture client",
		Credit:       &credit,
		Amount:       credit,
		Type:         ledger.TypeIncome,
		JournalCode:  "VE",
		CompteNum:    "706000",
		Source:       ledger.SourceFileImport,
	}

	newID := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO transactions`).
		WithArgs(
			tx.EcritureDate, tx.EcritureLib, tx.Debit, tx.Credit, tx.Amount, tx.Type,
			tx.JournalCode, tx.JournalLib, tx.JournalType, tx.EcritureNum,
			tx.CompteNum, tx.CompteLib, tx.CompAuxNum, tx.CompAuxLib,
			tx.PieceRef, tx.PieceDate, tx.EcritureLet, tx.DateLet, tx.ValidDate,
			tx.MontantDevise, tx.IDevise, tx.NumDoc,
			tx.CategoryID, tx.FiscalYearID, tx.Source,
		).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(newID, now))

	repo := NewPostgresRepository(mock)
	require.NoError(t, repo.InsertTransaction(context.Background(), tx))

	assert.Equal(t, newID, tx.ID)
	assert.Equal(t, now, tx.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTransactions(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	debit := decimal.RequireFromString("1200")
	catID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT (.|\n)+ FROM transactions`).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "ecriture_date", "ecriture_lib", "debit", "credit", "amount", "type",
			"journal_code", "journal_lib", "journal_type", "ecriture_num",
			"compte_num", "compte_lib", "comp_aux_num", "comp_aux_lib",
			"piece_ref", "piece_date", "ecriture_let", "date_let", "valid_date",
			"montant_devise", "idevise", "num_doc",
			"category_id", "fiscal_year_id", "source", "created_at",
		}).AddRow(
			uuid.New(), "20240115", "Loyer janvier", &debit, (*decimal.Decimal)(nil), debit, ledger.TypeExpense,
			"AC", "", "", "",
			"613200", "", "", "",
			"", "", "", "", "",
			(*decimal.Decimal)(nil), "", "",
			&catID, (*uuid.UUID)(nil), ledger.SourceFileImport, now,
		))

	repo := NewPostgresRepository(mock)
	transactions, err := repo.ListTransactions(context.Background())
	require.NoError(t, err)

	require.Len(t, transactions, 1)
	got := transactions[0]
	assert.Equal(t, "Loyer janvier", got.EcritureLib)
	require.NotNil(t, got.Debit)
	assert.True(t, got.Debit.Equal(debit))
	assert.Nil(t, got.Credit)
	assert.Equal(t, ledger.TypeExpense, got.Type)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, catID, *got.CategoryID)
	assert.Nil(t, got.FiscalYearID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTransactionCategory(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	txID := uuid.New()
	catID := uuid.New()

	mock.ExpectExec(`UPDATE transactions SET category_id`).
		WithArgs(txID, &catID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewPostgresRepository(mock)
	assert.NoError(t, repo.UpdateTransactionCategory(context.Background(), txID, &catID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTransactionCategory_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	txID := uuid.New()

	mock.ExpectExec(`UPDATE transactions SET category_id`).
		WithArgs(txID, (*uuid.UUID)(nil)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewPostgresRepository(mock)
	assert.ErrorIs(t, repo.UpdateTransactionCategory(context.Background(), txID, nil), pgx.ErrNoRows)
}

func TestListFiscalYears(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, name, start_date, end_date, is_current`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "start_date", "end_date", "is_current"}).
			AddRow(uuid.New(), "FY2024", start, end, true))

	repo := NewPostgresRepository(mock)
	years, err := repo.ListFiscalYears(context.Background())
	require.NoError(t, err)

	require.Len(t, years, 1)
	assert.Equal(t, "FY2024", years[0].Name)
	assert.True(t, years[0].IsCurrent)
	assert.True(t, years[0].Contains(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.False(t, years[0].Contains(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
