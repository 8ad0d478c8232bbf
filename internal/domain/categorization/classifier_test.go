package categorization

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdelacour/grandlivre/internal/domain/ledger"
)

func systemCategories() []ledger.Category {
	return []ledger.Category{
		{ID: uuid.New(), Name: "Capitaux", Type: ledger.CategoryBalanceSheet, AccountPrefix: "1", IsSystemCategory: true},
		{ID: uuid.New(), Name: "Immobilisations", Type: ledger.CategoryBalanceSheet, AccountPrefix: "2", IsSystemCategory: true},
		{ID: uuid.New(), Name: "Stocks", Type: ledger.CategoryBalanceSheet, AccountPrefix: "3", IsSystemCategory: true},
		{ID: uuid.New(), Name: "Tiers", Type: ledger.CategoryBalanceSheet, AccountPrefix: "4", IsSystemCategory: true},
		{ID: uuid.New(), Name: "Financier", Type: ledger.CategoryBalanceSheet, AccountPrefix: "5", IsSystemCategory: true},
		{ID: uuid.New(), Name: "Charges", Type: ledger.CategoryExpense, AccountPrefix: "6", IsSystemCategory: true},
		{ID: uuid.New(), Name: "Produits", Type: ledger.CategoryIncome, AccountPrefix: "7", IsSystemCategory: true},
	}
}

func TestSystemCategories_UniquePrefixes(t *testing.T) {
	// Classification by leading digit is only deterministic when each
	// account class maps to a single system category.
	seen := map[string]string{}
	for _, c := range systemCategories() {
		if !c.IsSystemCategory {
			continue
		}
		prev, dup := seen[c.AccountPrefix]
		assert.Falsef(t, dup, "prefix %s claimed by both %q and %q", c.AccountPrefix, prev, c.Name)
		seen[c.AccountPrefix] = c.Name
	}
	assert.Len(t, seen, 7)
}

func TestClassify_LeadingDigit(t *testing.T) {
	categories := systemCategories()

	tests := []struct {
		account string
		want    string
	}{
		{"411000", "Tiers"},
		{"712000", "Produits"},
		{"606400", "Charges"},
		{"512000", "Financier"},
		{"101000", "Capitaux"},
	}

	for _, tt := range tests {
		t.Run(tt.account, func(t *testing.T) {
			c := Classify(tt.account, categories)
			require.NotNil(t, c)
			assert.Equal(t, tt.want, c.Name)
		})
	}
}

func TestClassify_UnknownPrefix(t *testing.T) {
	categories := systemCategories()

	assert.Nil(t, Classify("890000", categories))
	assert.Nil(t, Classify("", categories))
	assert.Nil(t, Classify("411000", nil))
}

func TestClassify_IgnoresUserCategories(t *testing.T) {
	categories := []ledger.Category{
		{ID: uuid.New(), Name: "Perso", Type: ledger.CategoryExpense, AccountPrefix: "6", IsSystemCategory: false},
	}

	assert.Nil(t, Classify("606400", categories))
}

func TestClassify_NonDigitLeadingCharacter(t *testing.T) {
	categories := systemCategories()

	// Exports sometimes carry alphanumeric auxiliary accounts; they never
	// match a digit prefix.
	assert.Nil(t, Classify("CLIENT01", categories))
}
