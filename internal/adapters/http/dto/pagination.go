package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"slices"
)

// Page size bounds.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ErrInvalidCursor is returned for a cursor that cannot be decoded or no
// longer points into the result.
var ErrInvalidCursor = errors.New("invalid cursor")

// PaginationRequest holds the page parameters of a list request.
type PaginationRequest struct {
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit" validate:"omitempty,gte=1,lte=200"`
}

// GetLimit returns the limit with defaults applied.
func (p *PaginationRequest) GetLimit() int {
	switch {
	case p.Limit <= 0:
		return DefaultLimit
	case p.Limit > MaxLimit:
		return MaxLimit
	default:
		return p.Limit
	}
}

// PaginatedResponse is one page of items.
type PaginatedResponse[T any] struct {
	Items      []T    `json:"items"`
	Total      int    `json:"total"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

// CursorData is the content of an opaque cursor. It names the sort order
// the cursor was issued for and the id of the last item on the page.
type CursorData struct {
	Sort string `json:"s"`
	ID   string `json:"id"`
}

// EncodeCursor encodes data as URL-safe base64 JSON.
func EncodeCursor(data CursorData) string {
	raw, err := json.Marshal(data)
	if err != nil {
		return ""
	}

	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor reverses EncodeCursor.
func DecodeCursor(encoded string) (CursorData, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return CursorData{}, ErrInvalidCursor
	}

	var data CursorData
	if err := json.Unmarshal(raw, &data); err != nil || data.ID == "" {
		return CursorData{}, ErrInvalidCursor
	}

	return data, nil
}

// Paginate cuts one page out of items, which must already be in their
// final order. The page starts after the item the cursor names.
func Paginate[T any](items []T, req PaginationRequest, sort string, idOf func(T) string) (*PaginatedResponse[T], error) {
	start := 0

	if req.Cursor != "" {
		cur, err := DecodeCursor(req.Cursor)
		if err != nil || cur.Sort != sort {
			return nil, ErrInvalidCursor
		}

		idx := slices.IndexFunc(items, func(item T) bool { return idOf(item) == cur.ID })
		if idx < 0 {
			return nil, ErrInvalidCursor
		}

		start = idx + 1
	}

	limit := req.GetLimit()
	end := min(start+limit, len(items))

	page := &PaginatedResponse[T]{
		Items:   slices.Clone(items[start:end]),
		Total:   len(items),
		HasMore: end < len(items),
	}

	if page.Items == nil {
		page.Items = []T{}
	}

	if page.HasMore && end > start {
		page.NextCursor = EncodeCursor(CursorData{Sort: sort, ID: idOf(items[end-1])})
	}

	return page, nil
}
