// Package store defines the persistence contract for the lifelog server.
package store

import (
	"context"

	"github.com/lifelogapp/lifelog-server/internal/domain"
	"github.com/lifelogapp/lifelog-server/internal/timewindow"
)

// Store defines the interface for all persistence operations.
// Implementations scope a connection to each call and wrap multi-statement
// writes in a single transaction.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Logs
	CreateLog(ctx context.Context, log *domain.Log) error
	GetLog(ctx context.Context, id string) (*domain.Log, error)
	UpdateLog(ctx context.Context, id string, patch LogPatch) (*domain.Log, error)
	DeleteLog(ctx context.Context, id string) error
	ListLogsByWindow(ctx context.Context, window timewindow.Range, page PaginationParams) (*PaginatedResult[*domain.Log], error)
	ListLogsByType(ctx context.Context, types []domain.LogType, page PaginationParams) (*PaginatedResult[*domain.Log], error)
	ListLogsByTag(ctx context.Context, tagID string, page PaginationParams) (*PaginatedResult[*domain.Log], error)
	SearchLogs(ctx context.Context, q SearchQuery) ([]*domain.Log, error)

	// Aggregates
	CountLogs(ctx context.Context, window timewindow.Range) (int, error)
	LogTimestamps(ctx context.Context, window timewindow.Range) ([]int64, error)
	RecentBookmarkURLs(ctx context.Context, limit int) ([]string, error)
	TopTags(ctx context.Context, limit int) ([]domain.TagCount, error)

	// Tags
	CreateTag(ctx context.Context, tag *domain.Tag) error
	GetTag(ctx context.Context, id string) (*domain.Tag, error)
	GetTagByName(ctx context.Context, name string) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	DeleteTag(ctx context.Context, id string) error
}

// LogPatch carries the fields of a partial log update.
// Nil fields are left unchanged. A non-nil TagIDs, even empty, replaces
// the whole association set.
type LogPatch struct {
	Type      *domain.LogType
	Content   *string
	Timestamp *int64
	Metadata  *domain.Metadata
	TagIDs    *[]string
	// NowMs is the update instant; UpdatedAt always moves past its previous value.
	NowMs int64
}

// SearchQuery describes a bounded substring search.
type SearchQuery struct {
	Text   string // literal substring; pattern metacharacters are escaped by the store
	Window timewindow.Range
	Type   domain.LogType // empty for all types
	Limit  int
}
