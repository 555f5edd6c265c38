package domain

import (
	"cmp"
	"slices"
	"strings"
)

// QueryParams are the view parameters of the query pipeline.
type QueryParams struct {
	Search          string
	FavoritesOnly   bool
	SortNewestFirst bool
}

// Query sorts records by creation time (stable on ties), then keeps the
// records matching the search text and, if requested, only favourites.
// The input slice is not modified.
func Query(records []QuoteRecord, p QueryParams) []QuoteRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b QuoteRecord) int {
		if p.SortNewestFirst {
			return cmp.Compare(b.Created, a.Created)
		}

		return cmp.Compare(a.Created, b.Created)
	})

	needle := strings.ToLower(strings.TrimSpace(p.Search))

	out := sorted[:0]
	for _, r := range sorted {
		if needle != "" && !strings.Contains(r.haystack(), needle) {
			continue
		}
		if p.FavoritesOnly && !r.Fav {
			continue
		}
		out = append(out, r)
	}

	return out
}

// Stats summarises a collection.
type Stats struct {
	Count     int      `json:"count"`
	Favorites int      `json:"favorites"`
	Tags      []string `json:"tags"`
}

// ComputeStats counts records and favourites and lists the distinct tags
// in the order they first appear.
func ComputeStats(records []QuoteRecord) Stats {
	s := Stats{Count: len(records), Tags: []string{}}
	seen := make(map[string]struct{})

	for _, r := range records {
		if r.Fav {
			s.Favorites++
		}
		for _, tag := range r.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			s.Tags = append(s.Tags, tag)
		}
	}

	return s
}
