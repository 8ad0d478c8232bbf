// Package ledger defines the canonical domain types shared across the
// import, classification and reporting pipelines.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType marks which side of the ledger a transaction falls on.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// CategoryType classifies a category under the French chart of accounts:
// class 7 accounts are income, class 6 expense, classes 1-5 balance sheet.
type CategoryType string

const (
	CategoryIncome       CategoryType = "income"
	CategoryExpense      CategoryType = "expense"
	CategoryBalanceSheet CategoryType = "BS"
)

// BudgetPeriod is the cadence a budget amount applies to.
type BudgetPeriod string

const (
	PeriodMonthly   BudgetPeriod = "monthly"
	PeriodQuarterly BudgetPeriod = "quarterly"
	PeriodYearly    BudgetPeriod = "yearly"
)

// SourceFileImport marks transactions created by the file import pipeline.
const SourceFileImport = "file-import"

// Transaction is a normalized general-ledger entry (écriture).
// The ID is assigned by the persistence layer on insert; the import
// pipeline never fabricates identities.
type Transaction struct {
	ID uuid.UUID

	// Required fields. EcritureDate is carried as the raw date string from
	// the export and never reinterpreted by the import path.
	EcritureDate string
	EcritureLib  string

	// Debit and Credit are nil when the source column was absent or zero.
	Debit  *decimal.Decimal
	Credit *decimal.Decimal

	// Amount is the derived magnitude abs(credit - debit) and Type its sign.
	Amount decimal.Decimal
	Type   TransactionType

	// Pass-through fields from the export, empty when absent.
	JournalCode string
	JournalLib  string
	JournalType string
	EcritureNum string
	CompteNum   string
	CompteLib   string
	CompAuxNum  string
	CompAuxLib  string
	PieceRef    string
	PieceDate   string
	EcritureLet string
	DateLet     string
	ValidDate   string
	IDevise     string
	NumDoc      string

	// MontantDevise is the foreign-currency amount, nil when absent.
	MontantDevise *decimal.Decimal

	CategoryID   *uuid.UUID
	FiscalYearID *uuid.UUID
	Source       string
	CreatedAt    time.Time
}

// DebitValue returns the debit amount, zero when absent.
func (t *Transaction) DebitValue() decimal.Decimal {
	if t.Debit == nil {
		return decimal.Zero
	}
	return *t.Debit
}

// CreditValue returns the credit amount, zero when absent.
func (t *Transaction) CreditValue() decimal.Decimal {
	if t.Credit == nil {
		return decimal.Zero
	}
	return *t.Credit
}

// Category groups transactions for reporting. System categories are derived
// from chart-of-accounts classes and cannot be edited or deleted.
type Category struct {
	ID    uuid.UUID
	Name  string
	Color string
	Type  CategoryType

	// AccountPrefix is the single leading digit of the account numbers this
	// category covers. Empty for user-created categories.
	AccountPrefix    string
	IsSystemCategory bool
}

// BudgetItem holds the budgeted amount for one category and period.
// There is at most one item per (category, period) pair.
type BudgetItem struct {
	ID           uuid.UUID
	CategoryID   uuid.UUID
	BudgetAmount decimal.Decimal
	Period       BudgetPeriod
}

// FiscalYear is a reporting date range transactions are partitioned into.
type FiscalYear struct {
	ID        uuid.UUID
	Name      string
	StartDate time.Time
	EndDate   time.Time
	IsCurrent bool
}

// Contains reports whether the date falls inside the fiscal year, bounds
// included.
func (fy *FiscalYear) Contains(t time.Time) bool {
	return !t.Before(fy.StartDate) && !t.After(fy.EndDate)
}

// dateFormats covers the date spellings seen in French ledger exports, the
// FEC compact form included.
var dateFormats = []string{
	"2006-01-02",
	"20060102",
	"02/01/2006",
	"2006/01/02",
	"02-01-2006",
	"02.01.2006",
	time.RFC3339,
}

// ParseDate parses an écriture date string. The second return is false
// when no known format matches; callers treat such dates as opaque.
func ParseDate(s string) (time.Time, bool) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
