package pipeline

import (
	"sort"
	"strings"
)

// SortMode selects the primary ranking key. Relevance ordering serves the
// AI-answer path; price ordering serves the live path, where the query was
// forwarded verbatim to each supplier's own search.
type SortMode int

const (
	ByRelevance SortMode = iota
	ByPrice
)

// dedupeNameLength bounds the product-name part of the dedup key: listings
// for the same board differ in trailing boilerplate far more often than in
// their opening characters.
const dedupeNameLength = 50

// DefaultMaxResults caps the ranked output when the caller does not say.
const DefaultMaxResults = 5

// MaxResultsCeiling is the hard cap regardless of what the caller asks for.
const MaxResultsCeiling = 20

// Rank deduplicates near-identical records and returns them ordered. The
// cheaper record wins a dedup collision (first-seen on ties); ordering is
// primary key by mode, then price ascending with unknown prices last, then
// original order. Truncation happens only after sorting so the best
// candidates survive, not the first ones encountered.
func Rank(records []Record, mode SortMode, max int) []Record {
	if max <= 0 {
		max = DefaultMaxResults
	}
	if max > MaxResultsCeiling {
		max = MaxResultsCeiling
	}

	deduped := dedupe(records)

	sort.SliceStable(deduped, func(i, j int) bool {
		a, b := deduped[i], deduped[j]
		if mode == ByRelevance && a.Relevance != b.Relevance {
			return a.Relevance > b.Relevance
		}
		if a.Price.Less(b.Price) {
			return true
		}
		if b.Price.Less(a.Price) {
			return false
		}
		return false
	})

	if len(deduped) > max {
		deduped = deduped[:max]
	}
	return deduped
}

func dedupe(records []Record) []Record {
	byKey := make(map[string]int, len(records))
	var out []Record
	for _, rec := range records {
		key := dedupeKey(rec)
		idx, seen := byKey[key]
		if !seen {
			byKey[key] = len(out)
			out = append(out, rec)
			continue
		}
		if rec.Price.Less(out[idx].Price) {
			out[idx] = rec
		}
	}
	return out
}

func dedupeKey(rec Record) string {
	name := strings.ToLower(collapseSpace(rec.ProductName))
	if len(name) > dedupeNameLength {
		name = name[:dedupeNameLength]
	}
	return strings.ToLower(rec.Supplier) + "|" + name
}
