// Package mapper turns parsed tabular rows into canonical ledger
// transactions. It owns the debit/credit arithmetic and the required-field
// gate; cell-level noise degrades to zero instead of failing an import.
package mapper

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tdelacour/grandlivre/internal/domain/import/fields"
	"github.com/tdelacour/grandlivre/internal/domain/import/parser"
	"github.com/tdelacour/grandlivre/internal/domain/ledger"
)

// EmitFunc receives each accepted transaction, synchronously and in row
// order. The transaction has no ID yet; identity belongs to the store.
type EmitFunc func(tx *ledger.Transaction)

// Mapper builds canonical transactions from raw rows using a field
// resolver.
type Mapper struct {
	resolver *fields.Resolver
}

// New creates a mapper. A nil resolver uses the default synonym table.
func New(resolver *fields.Resolver) *Mapper {
	if resolver == nil {
		resolver = fields.NewResolver(nil)
	}
	return &Mapper{resolver: resolver}
}

// optionalFields are copied through verbatim when present in the row.
var optionalFields = []string{
	fields.JournalCode, fields.JournalLib, fields.EcritureNum,
	fields.CompteNum, fields.CompteLib, fields.CompAuxNum,
	fields.CompAuxLib, fields.PieceRef, fields.PieceDate,
	fields.EcritureLet, fields.DateLet, fields.ValidDate,
	fields.IDevise, fields.NumDoc, fields.JournalType,
}

// ProcessTransactionData maps every row and calls emit once per accepted
// row. It returns the accepted count. Rows missing a resolvable date or
// description, or whose derived amount is zero, are skipped silently; a
// structurally unusable file simply yields zero accepted rows.
func (m *Mapper) ProcessTransactionData(headers []string, rows []parser.RawRow, emit EmitFunc) int {
	// Header layout is constant for a file, so resolve once.
	dateIdx := m.resolver.Resolve(fields.EcritureDate, headers)
	libIdx := m.resolver.Resolve(fields.EcritureLib, headers)
	debitIdx := m.resolver.Resolve(fields.Debit, headers)
	creditIdx := m.resolver.Resolve(fields.Credit, headers)
	amountIdx := m.resolver.Resolve(fields.Amount, headers)

	if dateIdx == fields.NotFound || libIdx == fields.NotFound {
		return 0
	}

	accepted := 0
	for _, row := range rows {
		date := strings.TrimSpace(row[headers[dateIdx]])
		lib := strings.TrimSpace(row[headers[libIdx]])
		if date == "" || lib == "" {
			continue
		}

		debit := cellValue(row, headers, debitIdx)
		credit := cellValue(row, headers, creditIdx)

		// Signed amount: credit side positive. When both legs are zero a
		// single signed amount column is the fallback.
		signed := credit.Sub(debit)
		if debit.IsZero() && credit.IsZero() && amountIdx != fields.NotFound {
			signed = cellValue(row, headers, amountIdx)
		}
		if signed.IsZero() {
			continue
		}

		tx := &ledger.Transaction{
			EcritureDate: date,
			EcritureLib:  lib,
			Amount:       signed.Abs(),
			Type:         ledger.TypeExpense,
			Source:       ledger.SourceFileImport,
		}
		if signed.IsPositive() {
			tx.Type = ledger.TypeIncome
		}
		if !debit.IsZero() {
			tx.Debit = &debit
		}
		if !credit.IsZero() {
			tx.Credit = &credit
		}

		m.copyOptionals(tx, headers, row)

		emit(tx)
		accepted++
	}

	return accepted
}

// copyOptionals passes through every optional field found in the row.
func (m *Mapper) copyOptionals(tx *ledger.Transaction, headers []string, row parser.RawRow) {
	for _, field := range optionalFields {
		idx := m.resolver.Resolve(field, headers)
		if idx == fields.NotFound {
			continue
		}
		value := strings.TrimSpace(row[headers[idx]])
		if value == "" {
			continue
		}

		switch field {
		case fields.JournalCode:
			tx.JournalCode = value
		case fields.JournalLib:
			tx.JournalLib = value
		case fields.EcritureNum:
			tx.EcritureNum = value
		case fields.CompteNum:
			tx.CompteNum = value
		case fields.CompteLib:
			tx.CompteLib = value
		case fields.CompAuxNum:
			tx.CompAuxNum = value
		case fields.CompAuxLib:
			tx.CompAuxLib = value
		case fields.PieceRef:
			tx.PieceRef = value
		case fields.PieceDate:
			tx.PieceDate = value
		case fields.EcritureLet:
			tx.EcritureLet = value
		case fields.DateLet:
			tx.DateLet = value
		case fields.ValidDate:
			tx.ValidDate = value
		case fields.IDevise:
			tx.IDevise = value
		case fields.NumDoc:
			tx.NumDoc = value
		case fields.JournalType:
			tx.JournalType = value
		}
	}

	// Foreign-currency amount is numeric, cleaned with the same rule as
	// debit/credit.
	if idx := m.resolver.Resolve(fields.MontantDevise, headers); idx != fields.NotFound {
		if raw := strings.TrimSpace(row[headers[idx]]); raw != "" {
			v := parseNumericCell(raw)
			tx.MontantDevise = &v
		}
	}
}

// cellValue reads and parses a numeric cell by resolved index; an
// unresolved index or unparsable cell is zero.
func cellValue(row parser.RawRow, headers []string, idx int) decimal.Decimal {
	if idx == fields.NotFound {
		return decimal.Zero
	}
	return parseNumericCell(row[headers[idx]])
}

// parseNumericCell strips every character that is not a digit, minus sign
// or decimal point, then parses. Anything unparsable degrades to zero so a
// single bad cell never aborts the batch.
func parseNumericCell(raw string) decimal.Decimal {
	var b strings.Builder
	for _, r := range raw {
		if r == '-' || r == '.' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}
