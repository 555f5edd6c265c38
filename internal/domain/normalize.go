package domain

import (
	"time"
)

// Mode selects which defaulting rules the normalizer applies.
type Mode int

const (
	// ModeStore is manual entry: timestamps are always now and an empty
	// author stays empty.
	ModeStore Mode = iota

	// ModeImport is bulk replace from a document: supplied ids and
	// timestamps are kept and an empty author stays empty.
	ModeImport

	// ModeMerge is the merge tool: ids are always fresh and an empty
	// author becomes "Unknown".
	ModeMerge
)

// String returns the mode name used in logs.
func (m Mode) String() string {
	switch m {
	case ModeStore:
		return "store"
	case ModeImport:
		return "import"
	case ModeMerge:
		return "merge"
	default:
		return "unknown"
	}
}

// Normalizer coerces drafts into well-formed records. It is pure apart
// from the clock and the id generator's random source.
type Normalizer struct {
	IDs *IDGenerator

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewNormalizer returns a normalizer that draws ids from ids.
func NewNormalizer(ids *IDGenerator) *Normalizer {
	if ids == nil {
		ids = NewIDGenerator(FormatCompact)
	}

	return &Normalizer{IDs: ids}
}

// Normalize builds a record from d. Drafts whose trimmed text is empty
// yield a *ValidationSkip. The returned id is not added to excluded.
func (n *Normalizer) Normalize(d Draft, mode Mode, excluded IDSet) (QuoteRecord, error) {
	text := d.Text.Trimmed()
	if text == "" {
		return QuoteRecord{}, &ValidationSkip{Reason: "text is empty"}
	}

	author := d.Author.Trimmed()
	if author == "" && mode == ModeMerge {
		author = UnknownAuthor
	}

	now := n.now().UnixMilli()
	created, updated := now, now
	if mode != ModeStore {
		created = d.Created.Or(now)
		updated = d.Updated.Or(created)
	}

	return QuoteRecord{
		ID:      n.assignID(d.ID.Trimmed(), mode, excluded),
		Text:    text,
		Author:  author,
		Tags:    d.Tags.Resolve(),
		Fav:     bool(d.Fav),
		Created: created,
		Updated: updated,
	}, nil
}

func (n *Normalizer) assignID(supplied string, mode Mode, excluded IDSet) string {
	if mode != ModeMerge && supplied != "" && !excluded.Has(supplied) {
		return supplied
	}

	return n.IDs.Generate(excluded)
}

func (n *Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}

	return time.Now()
}
