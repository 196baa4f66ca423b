package service

import (
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lifelogapp/lifelog-server/internal/audit"
	"github.com/lifelogapp/lifelog-server/internal/store/sqlite"
	"github.com/lifelogapp/lifelog-server/internal/validation"
)

// fixedNow is Monday 2025-12-15 12:00 UTC.
var fixedNow = time.Date(2025, 12, 15, 12, 0, 0, 0, time.UTC)

type recordedEvent struct {
	Type     audit.EventType
	EntityID string
}

type recordingAuditor struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (a *recordingAuditor) Publish(eventType audit.EventType, entityID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, recordedEvent{eventType, entityID})
}

func (a *recordingAuditor) recorded() []recordedEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]recordedEvent(nil), a.events...)
}

type testEnv struct {
	store   *sqlite.Store
	auditor *recordingAuditor
	logs    *LogService
	tags    *TagService
	search  *SearchService
	stats   *StatsService
	clock   *time.Time
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "lifelog.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	now := fixedNow
	env := &testEnv{
		store:   s,
		auditor: &recordingAuditor{},
		clock:   &now,
	}
	opts := []Option{
		WithClock(func() time.Time { return *env.clock }),
		WithAuditor(env.auditor),
	}
	v := validation.New()

	env.logs = NewLogService(s, v, logger, opts...)
	env.tags = NewTagService(s, v, logger, opts...)
	env.search = NewSearchService(s, logger, opts...)
	env.stats = NewStatsService(s, logger, opts...)
	return env
}

func ptr[T any](v T) *T { return &v }
