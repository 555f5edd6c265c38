package dto

import (
	"bytes"
	"encoding/json"

	"github.com/jsamuelsen/quotebook/internal/domain"
)

// Sort orders accepted by the list endpoint.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
)

// QuoteRequest is the body of add and update requests. Tags may be a
// comma-separated string or an array.
type QuoteRequest struct {
	Text   string         `json:"text"   validate:"notblank,max=4000"`
	Author string         `json:"author" validate:"max=200"`
	Tags   domain.TagList `json:"tags"`
	Fav    bool           `json:"fav"`
}

// Draft converts the request into engine input.
func (r QuoteRequest) Draft() domain.Draft {
	return domain.Draft{
		Text:   domain.LooseString(r.Text),
		Author: domain.LooseString(r.Author),
		Tags:   r.Tags,
		Fav:    domain.Flag(r.Fav),
	}
}

// QuoteResponse is a stored quote.
type QuoteResponse struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Author   string   `json:"author"`
	Tags     []string `json:"tags"`
	Fav      bool     `json:"fav"`
	Created  int64    `json:"created"`
	Updated  int64    `json:"updated"`
	Citation string   `json:"citation"`
}

// FromRecord converts a record into its response shape.
func FromRecord(r domain.QuoteRecord) QuoteResponse {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}

	return QuoteResponse{
		ID:       r.ID,
		Text:     r.Text,
		Author:   r.Author,
		Tags:     tags,
		Fav:      r.Fav,
		Created:  r.Created,
		Updated:  r.Updated,
		Citation: r.Citation(),
	}
}

// ListQuotesQuery holds the query parameters of the list endpoint.
type ListQuotesQuery struct {
	PaginationRequest

	Q         string `form:"q"         validate:"max=200"`
	Favorites bool   `form:"favorites"`
	Sort      string `form:"sort"      validate:"omitempty,oneof=newest oldest"`
}

// SortOrder returns the requested order, newest first by default.
func (q ListQuotesQuery) SortOrder() string {
	if q.Sort == "" {
		return SortNewest
	}

	return q.Sort
}

// Params converts the query into engine view parameters.
func (q ListQuotesQuery) Params() domain.QueryParams {
	return domain.QueryParams{
		Search:          q.Q,
		FavoritesOnly:   q.Favorites,
		SortNewestFirst: q.SortOrder() == SortNewest,
	}
}

// MergeRequest appends drafts to the stored collection.
type MergeRequest struct {
	Drafts json.RawMessage `json:"drafts" validate:"required"`
}

// MergeResponse reports a collection merge.
type MergeResponse struct {
	Added   int                     `json:"added"`
	Skipped []domain.ValidationSkip `json:"skipped"`
	Total   int                     `json:"total"`
}

// MergeDocumentRequest is the generator input. Base is the old document,
// either inline or as a JSON string holding its text; it may be omitted.
type MergeDocumentRequest struct {
	Base   json.RawMessage `json:"base"`
	Drafts json.RawMessage `json:"drafts" validate:"required"`
}

// BaseDocument returns the old document text.
func (r MergeDocumentRequest) BaseDocument() ([]byte, error) {
	return documentBytes(r.Base)
}

// MergeDocumentResponse is the generator output.
type MergeDocumentResponse struct {
	Document json.RawMessage `json:"document"`
	Base     int             `json:"base"`
	Added    int             `json:"added"`
	Skipped  int             `json:"skipped"`
	Summary  string          `json:"summary"`
}

// ImportResponse reports a replace-all import.
type ImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// StatsResponse summarises the collection.
type StatsResponse struct {
	Count     int      `json:"count"`
	Favorites int      `json:"favorites"`
	Tags      []string `json:"tags"`
}

// CitationResponse is the copy-as-citation text of a quote.
type CitationResponse struct {
	ID       string `json:"id"`
	Citation string `json:"citation"`
}

// documentBytes unwraps a JSON string holding a document. Anything else
// is returned as is.
func documentBytes(raw json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] != '"' {
		return trimmed, nil
	}

	var text string
	if err := json.Unmarshal(trimmed, &text); err != nil {
		return nil, domain.NewFormatError("base must be a document or a string")
	}

	return []byte(text), nil
}
