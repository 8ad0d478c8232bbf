// Package categorization assigns ledger transactions to categories. The
// primary rule is the French chart of accounts: the leading digit of the
// account number (classe) selects a system category. Keyword rules over the
// libellé act as a fallback, and fuzzy matching powers category suggestions
// in editing surfaces.
package categorization

import "github.com/tdelacour/grandlivre/internal/domain/ledger"

// Classify returns the system category whose account prefix equals the
// leading digit of accountNumber, or nil when no such category exists.
// Callers treat nil as unclassified, not as a failure.
//
// Only the single leading digit is compared. The chart-of-accounts classes
// 1-7 conventionally map 6 to expense, 7 to income and 1-5 to balance
// sheet, but the table is data-driven so operators can remap prefixes.
func Classify(accountNumber string, categories []ledger.Category) *ledger.Category {
	if accountNumber == "" {
		return nil
	}
	prefix := accountNumber[:1]

	for i := range categories {
		c := &categories[i]
		if c.IsSystemCategory && c.AccountPrefix == prefix {
			return c
		}
	}
	return nil
}
