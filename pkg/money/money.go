// Package money bridges the decimal amounts used across the ledger domain
// and go-money values for display. French ledgers are euro-denominated;
// foreign-currency amounts pass through the pipeline untouched, so EUR is
// the only currency formatted here.
package money

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// EUR is the ISO-4217 code for the ledger currency.
const EUR = money.EUR

// FromDecimal converts a decimal amount in euros to a go-money value in
// cents. Sub-cent precision rounds half away from zero, matching how
// accounting exports round their own totals.
func FromDecimal(d decimal.Decimal) *money.Money {
	cents := d.Mul(decimal.New(1, 2)).Round(0).IntPart()
	return money.New(cents, EUR)
}

// ToDecimal converts a go-money value back to a decimal euro amount.
func ToDecimal(m *money.Money) decimal.Decimal {
	if m == nil {
		return decimal.Zero
	}
	return decimal.New(m.Amount(), -2)
}

// Format renders a decimal euro amount for display, e.g. "€1,234.56".
func Format(d decimal.Decimal) string {
	return FromDecimal(d).Display()
}
