package store

import (
	"math"
	"strconv"
	"strings"
)

// Page size bounds for listing endpoints.
const (
	DefaultLimit = 50
	MaxLimit     = 100
	// SearchLimit caps search results; search is never paginated.
	SearchLimit = 50
)

// PaginationParams contains pagination request parameters.
type PaginationParams struct {
	Limit int     // Items per page, clamped to [1, MaxLimit]
	After *Cursor // Position of the last item already seen (nil for first page)
}

// PaginatedResult contains paginated data and metadata.
type PaginatedResult[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"nextCursor"` // nil when there are no more pages
	HasMore    bool    `json:"hasMore"`
}

// DefaultPaginationParams returns the first page at the default size.
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{
		Limit: DefaultLimit,
	}
}

// Validate clamps the limit into [1, MaxLimit].
func (p *PaginationParams) Validate() {
	p.Limit = ClampLimit(p.Limit)
}

// ClampLimit clamps n into [1, MaxLimit].
func ClampLimit(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// ParseLimit interprets a raw limit parameter.
// Absent, non-numeric and non-finite values yield DefaultLimit; numeric
// values are truncated and clamped, so "0" becomes 1 and "9999" becomes MaxLimit.
func ParseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLimit
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return DefaultLimit
	}
	if f > MaxLimit {
		return MaxLimit
	}
	return ClampLimit(int(f))
}

// Paginate trims an overfetched slice (limit+1 rows) to limit and derives the
// next cursor from the last returned item.
func Paginate[T any](rows []T, limit int, key func(T) Cursor) *PaginatedResult[T] {
	result := &PaginatedResult[T]{Items: rows}
	if result.Items == nil {
		result.Items = []T{}
	}
	if len(rows) > limit {
		result.Items = rows[:limit]
		result.HasMore = true
		next := key(result.Items[limit-1]).Encode()
		result.NextCursor = &next
	}
	return result
}
