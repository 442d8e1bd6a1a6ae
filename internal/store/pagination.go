package store

import (
	"encoding/base64"
	"fmt"

	domainerrors "github.com/cuepointapp/cuepoint-server/internal/errors"
)

// PaginationParams contains pagination request parameters.
type PaginationParams struct {
	Limit  int    // The number of items per page (defaults to 100 with a maximum of 1000)
	Cursor string // Opaque cursor for next page (empty for first page)
}

// PaginatedResult contains paginated data and metadata.
type PaginatedResult[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"` // Empty if no more pages
	HasMore    bool   `json:"has_more"`
	Total      int    `json:"total"`
}

// DefaultPaginationParams returns sensible defaults.
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{
		Limit:  100,
		Cursor: "",
	}
}

// Validate checks and corrects pagination parameters.
func (p *PaginationParams) Validate() {
	if p.Limit <= 0 {
		p.Limit = 100
	}

	if p.Limit > 1000 {
		p.Limit = 1000
	}
}

// EncodeCursor creates an opaque cursor from the key of the last item on a page.
func EncodeCursor(key string) string {
	if key == "" {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(key))
}

// DecodeCursor decodes a cursor back to a key.
func DecodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("invalid cursor: %w", err)
	}

	return string(decoded), nil
}

// Paginate returns the page of items following the cursor. items must be in
// a stable order and key must be unique per item. A cursor naming an item
// that is no longer present is a validation error.
func Paginate[T any](items []T, params PaginationParams, key func(T) string) (PaginatedResult[T], error) {
	params.Validate()

	after, err := DecodeCursor(params.Cursor)
	if err != nil {
		return PaginatedResult[T]{}, domainerrors.Validation(err.Error())
	}

	start := 0
	if after != "" {
		start = -1
		for i, item := range items {
			if key(item) == after {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return PaginatedResult[T]{}, domainerrors.Validation("cursor is stale or unknown")
		}
	}

	end := min(start+params.Limit, len(items))
	page := PaginatedResult[T]{
		Items: items[start:end],
		Total: len(items),
	}
	if end < len(items) {
		page.HasMore = true
		page.NextCursor = EncodeCursor(key(items[end-1]))
	}
	return page, nil
}
