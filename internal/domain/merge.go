package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// MergeResult is the outcome of combining a base collection with drafts.
type MergeResult struct {
	// Records is the base collection, unchanged and in order, followed by
	// the newly normalised drafts.
	Records []QuoteRecord

	// Added is the number of drafts appended.
	Added int

	// Skipped lists drafts dropped because their text was empty.
	Skipped []ValidationSkip
}

// BaseCount returns the number of records that came from the base collection.
func (r MergeResult) BaseCount() int {
	return len(r.Records) - r.Added
}

// Merge appends drafts to base, giving every new record an id that is
// unique across the result. Neither argument is modified.
func Merge(base []QuoteRecord, drafts []Draft, n *Normalizer) MergeResult {
	added, skipped := normalizeDrafts(drafts, NewIDSet(base), n)

	out := make([]QuoteRecord, 0, len(base)+len(added))
	out = append(out, cloneRecords(base)...)
	out = append(out, added...)

	return MergeResult{Records: out, Added: len(added), Skipped: skipped}
}

// DocumentMerge is the result of MergeDocument.
type DocumentMerge struct {
	// Document is the merged collection: the base elements exactly as they
	// were given, then the new records.
	Document []byte

	// Base is the number of elements taken from the base document.
	Base int

	// New holds the appended records in order.
	New []QuoteRecord

	// Skipped lists drafts dropped because their text was empty.
	Skipped []ValidationSkip
}

// Added returns the number of new records.
func (m DocumentMerge) Added() int {
	return len(m.New)
}

// MergeDocument appends drafts to the collection document baseJSON and
// renders the result. Base elements are not decoded beyond their ids and
// are copied into the output byte for byte, unknown fields included. Blank
// input is an empty collection; anything that is not an array is a
// *FormatError.
func MergeDocument(baseJSON []byte, drafts []Draft, n *Normalizer) (DocumentMerge, error) {
	var base []json.RawMessage
	if len(bytes.TrimSpace(baseJSON)) > 0 {
		items, err := decodeArray(baseJSON)
		if err != nil {
			return DocumentMerge{}, err
		}

		base = items
	}

	excluded := IDSet{}
	for _, raw := range base {
		if id, ok := elementID(raw); ok {
			excluded.Add(id)
		}
	}

	added, skipped := normalizeDrafts(drafts, excluded, n)

	elements := make([]json.RawMessage, 0, len(base)+len(added))
	elements = append(elements, base...)

	for _, rec := range added {
		raw, err := encodeElement(rec)
		if err != nil {
			return DocumentMerge{}, fmt.Errorf("encoding merged quote: %w", err)
		}

		elements = append(elements, raw)
	}

	return DocumentMerge{
		Document: joinElements(elements),
		Base:     len(base),
		New:      added,
		Skipped:  skipped,
	}, nil
}

// normalizeDrafts builds a merge record for every draft with text. Each new
// id is added to excluded.
func normalizeDrafts(drafts []Draft, excluded IDSet, n *Normalizer) ([]QuoteRecord, []ValidationSkip) {
	var (
		added   []QuoteRecord
		skipped []ValidationSkip
	)

	for i, d := range drafts {
		rec, err := n.Normalize(d, ModeMerge, excluded)
		if err != nil {
			var skip *ValidationSkip
			if errors.As(err, &skip) {
				skipped = append(skipped, ValidationSkip{Index: i, Reason: skip.Reason})
			}

			continue
		}

		excluded.Add(rec.ID)
		added = append(added, rec)
	}

	return added, skipped
}

// elementID reads the id of a base element. Elements that are not objects,
// or whose id is neither a string nor a number, have none.
func elementID(raw json.RawMessage) (string, bool) {
	var head struct {
		ID LooseString `json:"id"`
	}

	if err := json.Unmarshal(raw, &head); err != nil {
		return "", false
	}

	id := head.ID.Trimmed()

	return id, id != ""
}
