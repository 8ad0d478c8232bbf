package categorization

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/tdelacour/grandlivre/internal/domain/ledger"
)

// Suggestion ranks a category against a query string. Lower Distance means
// a closer match.
type Suggestion struct {
	Category ledger.Category
	Distance int
}

// SuggestCategories returns up to limit categories whose names fuzzily
// match the query, closest first. Matching is case- and accent-insensitive
// so "immobilisation" finds "Immobilisations" and "remunerations" finds
// "Rémunérations". Used by editing surfaces to offer a category while
// recategorizing an unclassified transaction.
func SuggestCategories(query string, categories []ledger.Category, limit int) []Suggestion {
	query = strings.TrimSpace(query)
	if query == "" || len(categories) == 0 {
		return nil
	}

	suggestions := make([]Suggestion, 0, len(categories))
	for _, c := range categories {
		rank := fuzzy.RankMatchNormalizedFold(query, c.Name)
		if rank < 0 {
			continue
		}
		suggestions = append(suggestions, Suggestion{Category: c, Distance: rank})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Distance < suggestions[j].Distance
	})

	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}
