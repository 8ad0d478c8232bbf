package categorization

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
	"github.com/google/uuid"
)

// KeywordRule maps a keyword found in an écriture libellé to a category.
// Rules are the fallback for transactions whose account number did not
// classify, e.g. mixed-use 512 bank lines labelled "LOYER" or "URSSAF".
type KeywordRule struct {
	ID         uuid.UUID
	Keyword    string
	CategoryID uuid.UUID
	Priority   int
}

// RuleMatch is the outcome of matching a libellé against the rule set.
type RuleMatch struct {
	Keyword    string
	CategoryID uuid.UUID
	RuleID     uuid.UUID
	Priority   int
}

// Engine matches libellés against keyword rules using Aho-Corasick, so a
// single pass over the text checks every rule regardless of how many are
// loaded.
type Engine struct {
	matcher  *ahocorasick.Matcher
	keywords []string
	matches  []RuleMatch
	mu       sync.RWMutex
}

// NewEngine builds an engine from the complete rule set.
func NewEngine(rules []KeywordRule) *Engine {
	e := &Engine{}
	e.Build(rules)
	return e
}

// Build reconstructs the matcher. Call again whenever the rules change.
// Rules with the same keyword collapse into one pattern; the highest
// priority wins at match time.
func (e *Engine) Build(rules []KeywordRule) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(rules) == 0 {
		e.matcher = nil
		e.keywords = nil
		e.matches = nil
		return
	}

	keywords := make([]string, 0, len(rules))
	matches := make([]RuleMatch, 0, len(rules))

	for _, rule := range rules {
		keyword := strings.ToUpper(strings.TrimSpace(rule.Keyword))
		if keyword == "" {
			continue
		}
		keywords = append(keywords, keyword)
		matches = append(matches, RuleMatch{
			Keyword:    keyword,
			CategoryID: rule.CategoryID,
			RuleID:     rule.ID,
			Priority:   rule.Priority,
		})
	}

	e.keywords = keywords
	e.matches = matches

	if len(keywords) == 0 {
		e.matcher = nil
		return
	}

	patterns := make([][]byte, len(keywords))
	for i, k := range keywords {
		patterns[i] = []byte(k)
	}
	e.matcher = ahocorasick.NewMatcher(patterns)
}

// Match returns the highest-priority rule whose keyword occurs in the
// libellé, or nil when none match. Matching is case-insensitive.
func (e *Engine) Match(libelle string) *RuleMatch {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.matcher == nil {
		return nil
	}

	hits := e.matcher.Match([]byte(strings.ToUpper(libelle)))
	if len(hits) == 0 {
		return nil
	}

	var best *RuleMatch
	for _, idx := range hits {
		if idx < 0 || idx >= len(e.matches) {
			continue
		}
		m := e.matches[idx]
		if best == nil || m.Priority > best.Priority {
			copied := m
			best = &copied
		}
	}
	return best
}

// RuleCount returns the number of keywords loaded.
func (e *Engine) RuleCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.keywords)
}
