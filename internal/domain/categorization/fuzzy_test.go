package categorization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdelacour/grandlivre/internal/domain/ledger"
)

func TestSuggestCategories_AccentInsensitive(t *testing.T) {
	categories := []ledger.Category{
		{Name: "Rémunérations"},
		{Name: "Charges"},
	}

	got := SuggestCategories("remunerations", categories, 5)
	require.NotEmpty(t, got)
	assert.Equal(t, "Rémunérations", got[0].Category.Name)
}

func TestSuggestCategories_ClosestFirst(t *testing.T) {
	categories := []ledger.Category{
		{Name: "Immobilisations"},
		{Name: "Immobilisations financières"},
	}

	got := SuggestCategories("immobilisations", categories, 5)
	require.Len(t, got, 2)
	assert.Equal(t, "Immobilisations", got[0].Category.Name)
	assert.LessOrEqual(t, got[0].Distance, got[1].Distance)
}

func TestSuggestCategories_Limit(t *testing.T) {
	categories := []ledger.Category{
		{Name: "Charges"},
		{Name: "Charges exceptionnelles"},
		{Name: "Charges financières"},
	}

	got := SuggestCategories("charges", categories, 2)
	assert.Len(t, got, 2)
}

func TestSuggestCategories_NoMatch(t *testing.T) {
	categories := []ledger.Category{{Name: "Produits"}}

	assert.Empty(t, SuggestCategories("zzzzzz", categories, 5))
	assert.Empty(t, SuggestCategories("", categories, 5))
	assert.Empty(t, SuggestCategories("produits", nil, 5))
}
