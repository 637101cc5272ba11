package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/poiesic/claimdesk/core"
	"github.com/poiesic/claimdesk/storage"
)

// NormalizeQuery turns a free-text query into a substring pattern.
// Returns false for empty or whitespace-only queries, which must not be
// sent to the store.
func NormalizeQuery(query string) (storage.Pattern, bool) {
	if strings.TrimSpace(query) == "" {
		return storage.Pattern{}, false
	}
	return storage.NewPattern(query), true
}

// Merge tags records from one collection and appends them to results.
func Merge(results []core.SearchResult, collection core.Collection, records []*core.Record) []core.SearchResult {
	for _, record := range records {
		if record == nil {
			continue
		}
		results = append(results, core.NewSearchResult(collection, record))
	}
	return results
}

// Relevance tiers, lowest sorts first.
const (
	tierExact = iota
	tierPrefix
	tierOther
)

// relevanceTier classifies a title against the lower-cased query.
func relevanceTier(title, needle string) int {
	lowered := strings.ToLower(title)
	switch {
	case lowered == needle:
		return tierExact
	case strings.HasPrefix(lowered, needle):
		return tierPrefix
	default:
		return tierOther
	}
}

// Rank orders results in place: exact case-insensitive title matches first,
// then titles starting with the query, then the rest. The sort is stable so
// results within a tier keep their merged order.
func Rank(results []core.SearchResult, query string) {
	needle := strings.ToLower(query)
	slices.SortStableFunc(results, func(a, b core.SearchResult) int {
		return cmp.Compare(relevanceTier(a.Title, needle), relevanceTier(b.Title, needle))
	})
}
