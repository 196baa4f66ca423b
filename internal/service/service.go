// Package service implements the lifelog use cases on top of the store:
// parameter validation, window resolution, and audit publication.
package service

import (
	"strings"
	"time"

	"github.com/lifelogapp/lifelog-server/internal/audit"
	"github.com/lifelogapp/lifelog-server/internal/store"
)

// Auditor receives mutation events after they are committed.
// *audit.Notifier satisfies it.
type Auditor interface {
	Publish(eventType audit.EventType, entityID string)
}

// Clock returns the current instant. Services default to time.Now.
type Clock func() time.Time

type nopAuditor struct{}

func (nopAuditor) Publish(audit.EventType, string) {}

// PageRequest carries raw pagination input as received from a caller.
type PageRequest struct {
	Limit  string // parsed leniently, see store.ParseLimit
	Cursor string // opaque "{timestampMs}_{id}", empty for the first page
}

// params converts the request into store pagination params.
// A malformed cursor is an error; a malformed limit falls back to the default.
func (r PageRequest) params() (store.PaginationParams, error) {
	after, err := store.DecodeCursor(strings.TrimSpace(r.Cursor))
	if err != nil {
		return store.PaginationParams{}, err
	}
	return store.PaginationParams{
		Limit: store.ParseLimit(r.Limit),
		After: after,
	}, nil
}

// Option configures a service.
type Option func(*options)

type options struct {
	clock   Clock
	auditor Auditor
}

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithAuditor sets the mutation event sink.
func WithAuditor(a Auditor) Option {
	return func(o *options) {
		if a != nil {
			o.auditor = a
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{clock: time.Now, auditor: nopAuditor{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
