package domain

import "time"

// placeholderAuthor is the author shown on the bundled example quotes.
const placeholderAuthor = "—"

// ExampleQuotes returns the two quotes a new collection starts with.
func ExampleQuotes(now time.Time, ids *IDGenerator) []QuoteRecord {
	ms := now.UnixMilli()
	excluded := IDSet{}

	first := ids.Generate(excluded)
	excluded.Add(first)
	second := ids.Generate(excluded)

	return []QuoteRecord{
		{
			ID:      first,
			Text:    "Design systems are opinions embedded in code.",
			Author:  placeholderAuthor,
			Tags:    []string{"design", "dev"},
			Fav:     true,
			Created: ms - 1_000_000,
			Updated: ms - 1_000_000,
		},
		{
			ID:      second,
			Text:    "Iterate fast. Ship often. Learn faster.",
			Author:  placeholderAuthor,
			Tags:    []string{"process", "dev"},
			Fav:     false,
			Created: ms - 500_000,
			Updated: ms - 500_000,
		},
	}
}
