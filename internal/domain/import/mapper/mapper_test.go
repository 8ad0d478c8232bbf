package mapper

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdelacour/grandlivre/internal/domain/import/parser"
	"github.com/tdelacour/grandlivre/internal/domain/ledger"
)

func collect(t *testing.T, headers []string, rows []parser.RawRow) (int, []*ledger.Transaction) {
	t.Helper()

	var out []*ledger.Transaction
	n := New(nil).ProcessTransactionData(headers, rows, func(tx *ledger.Transaction) {
		out = append(out, tx)
	})
	return n, out
}

func TestProcessTransactionData_SignedAmountColumn(t *testing.T) {
	headers := []string{"date", "libelle", "montant"}
	rows := []parser.RawRow{
		{"date": "2024-01-15", "libelle": "Loyer janvier", "montant": "-1200.00"},
	}

	n, txs := collect(t, headers, rows)
	require.Equal(t, 1, n)
	require.Len(t, txs, 1)

	tx := txs[0]
	assert.Equal(t, ledger.TypeExpense, tx.Type)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("1200")))
	assert.Nil(t, tx.Debit)
	assert.Nil(t, tx.Credit)
	assert.Equal(t, ledger.SourceFileImport, tx.Source)
}

func TestProcessTransactionData_CreditLeg(t *testing.T) {
	headers := []string{"date", "libelle", "debit", "credit"}
	rows := []parser.RawRow{
		{"date": "2024-01-20", "libelle": "Prestation conseil", "debit": "", "credit": "500.50"},
	}

	n, txs := collect(t, headers, rows)
	require.Equal(t, 1, n)

	tx := txs[0]
	assert.Equal(t, ledger.TypeIncome, tx.Type)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("500.5")))
	assert.Nil(t, tx.Debit)
	require.NotNil(t, tx.Credit)
	assert.True(t, tx.Credit.Equal(decimal.RequireFromString("500.5")))
}

func TestProcessTransactionData_BalancedLegsSkipped(t *testing.T) {
	headers := []string{"date", "libelle", "debit", "credit"}
	rows := []parser.RawRow{
		{"date": "2024-01-21", "libelle": "Virement interne", "debit": "100.00", "credit": "100.00"},
	}

	n, txs := collect(t, headers, rows)
	assert.Equal(t, 0, n)
	assert.Empty(t, txs)
}

func TestProcessTransactionData_AmountFallbackOnlyWhenLegsZero(t *testing.T) {
	headers := []string{"date", "libelle", "debit", "credit", "montant"}
	rows := []parser.RawRow{
		// Legs present: the amount column is ignored.
		{"date": "2024-02-01", "libelle": "Achat", "debit": "40.00", "credit": "", "montant": "999"},
		// Legs zero: the signed amount column decides.
		{"date": "2024-02-02", "libelle": "Remboursement", "debit": "0", "credit": "0", "montant": "75.25"},
	}

	n, txs := collect(t, headers, rows)
	require.Equal(t, 2, n)

	assert.Equal(t, ledger.TypeExpense, txs[0].Type)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("40")))

	assert.Equal(t, ledger.TypeIncome, txs[1].Type)
	assert.True(t, txs[1].Amount.Equal(decimal.RequireFromString("75.25")))
	assert.Nil(t, txs[1].Debit)
	assert.Nil(t, txs[1].Credit)
}

func TestProcessTransactionData_AccentedHeaders(t *testing.T) {
	for _, headers := range [][]string{
		{"Date", "Libellé", "Débit", "Crédit"},
		{"date", "libelle", "debit", "credit"},
		{"DATE", "LIBELLE", "DEBIT", "CREDIT"},
	} {
		rows := []parser.RawRow{{
			headers[0]: "2024-03-01",
			headers[1]: "Honoraires",
			headers[2]: "250.00",
			headers[3]: "",
		}}

		n, txs := collect(t, headers, rows)
		require.Equal(t, 1, n, "headers %v", headers)
		assert.Equal(t, ledger.TypeExpense, txs[0].Type)
		assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("250")))
	}
}

func TestProcessTransactionData_RequiredFieldGate(t *testing.T) {
	headers := []string{"date", "libelle", "montant"}
	rows := []parser.RawRow{
		{"date": "", "libelle": "Sans date", "montant": "10"},
		{"date": "2024-01-01", "libelle": "", "montant": "10"},
		{"date": "2024-01-02", "libelle": "Valide", "montant": "10"},
	}

	n, txs := collect(t, headers, rows)
	assert.Equal(t, 1, n)
	require.Len(t, txs, 1)
	assert.Equal(t, "Valide", txs[0].EcritureLib)
}

func TestProcessTransactionData_UnresolvableRequiredColumns(t *testing.T) {
	n, txs := collect(t, []string{"foo", "bar", "baz"}, []parser.RawRow{
		{"foo": "a", "bar": "b", "baz": "c"},
	})
	assert.Equal(t, 0, n)
	assert.Empty(t, txs)
}

func TestProcessTransactionData_OptionalPassthrough(t *testing.T) {
	headers := []string{
		"ecriture_date", "ecriture_lib", "debit", "credit",
		"journal_code", "compte_num", "compte_lib", "piece_ref", "montant_devise", "idevise",
	}
	rows := []parser.RawRow{{
		"ecriture_date":  "20240115",
		"ecriture_lib":   "Facture client",
		"debit":          "",
		"credit":         "1500.00",
		"journal_code":   "VE",
		"compte_num":     "706000",
		"compte_lib":     "Prestations",
		"piece_ref":      "F001",
		"montant_devise": "1620.00",
		"idevise":        "USD",
	}}

	n, txs := collect(t, headers, rows)
	require.Equal(t, 1, n)

	tx := txs[0]
	assert.Equal(t, "VE", tx.JournalCode)
	assert.Equal(t, "706000", tx.CompteNum)
	assert.Equal(t, "Prestations", tx.CompteLib)
	assert.Equal(t, "F001", tx.PieceRef)
	assert.Equal(t, "USD", tx.IDevise)
	require.NotNil(t, tx.MontantDevise)
	assert.True(t, tx.MontantDevise.Equal(decimal.RequireFromString("1620")))
}

func TestParseNumericCell(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "1200.50", "1200.5"},
		{"currency symbol", "1200.50 EUR", "1200.5"},
		{"euro sign", "€45.90", "45.9"},
		{"negative", "-300", "-300"},
		{"garbage", "n/a", "0"},
		{"empty", "", "0"},
		{"spaces", " 1 200.00 ", "1200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseNumericCell(tt.raw)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}
