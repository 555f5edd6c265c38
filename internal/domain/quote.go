package domain

import (
	"slices"
	"strings"
)

const (
	// StorageKey names the persisted collection (file base name, SQLite collection key).
	StorageKey = "stellar_quotes_v1"

	// ExportFilename is the suggested file name for exported collections.
	ExportFilename = "stellar_quotes.json"

	// UnknownAuthor replaces an empty author on the merge path.
	UnknownAuthor = "Unknown"
)

// QuoteRecord is one saved quotation with its metadata.
// Timestamps are milliseconds since the Unix epoch.
type QuoteRecord struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Author  string   `json:"author"`
	Tags    []string `json:"tags"`
	Fav     bool     `json:"fav"`
	Created int64    `json:"created"`
	Updated int64    `json:"updated"`
}

// Clone returns a copy that shares no slices with q.
func (q QuoteRecord) Clone() QuoteRecord {
	q.Tags = slices.Clone(q.Tags)
	if q.Tags == nil {
		q.Tags = []string{}
	}

	return q
}

// Citation formats the record the way it is copied to the clipboard:
// the quoted text followed by " — author" when an author is set.
func (q QuoteRecord) Citation() string {
	if q.Author == "" {
		return `"` + q.Text + `"`
	}

	return `"` + q.Text + `" — ` + q.Author
}

// haystack is the text the search filter matches against.
func (q QuoteRecord) haystack() string {
	return strings.ToLower(q.Text + " " + q.Author + " " + strings.Join(q.Tags, " "))
}

// IDSet is the exclusion set used when drawing fresh ids.
type IDSet map[string]struct{}

// NewIDSet collects the ids of records.
func NewIDSet(records []QuoteRecord) IDSet {
	set := make(IDSet, len(records))
	for _, r := range records {
		set.Add(r.ID)
	}

	return set
}

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id into the set.
func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

// cloneRecords deep-copies a collection.
func cloneRecords(records []QuoteRecord) []QuoteRecord {
	out := make([]QuoteRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}

	return out
}

// CloneRecords deep-copies a collection so callers can hand it out safely.
func CloneRecords(records []QuoteRecord) []QuoteRecord {
	return cloneRecords(records)
}
