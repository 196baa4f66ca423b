package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelogapp/lifelog-server/internal/domain"
	domainerrors "github.com/lifelogapp/lifelog-server/internal/errors"
)

func TestStatsService_MonthDays(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	at := func(y int, m time.Month, d, h, min int) {
		ts := time.Date(y, m, d, h, min, 0, 0, ny).UnixMilli()
		_, err := env.logs.Create(ctx, CreateLogInput{Type: "thought", Content: "x", Timestamp: &ts})
		require.NoError(t, err)
	}
	at(2025, 12, 3, 8, 15)
	at(2025, 12, 3, 22, 40)
	at(2025, 12, 15, 12, 0)
	at(2026, 1, 1, 0, 0)

	stats, err := env.stats.Get(ctx, "America/New_York", "2025-12")
	require.NoError(t, err)

	assert.Equal(t, []domain.DayCount{
		{Date: "2025-12-03", Count: 2},
		{Date: "2025-12-15", Count: 1},
	}, stats.MonthDays)
}

func TestStatsService_TodayAndWeek(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	// fixedNow is Monday 2025-12-15 12:00 UTC.
	create := func(ts time.Time) {
		ms := ts.UnixMilli()
		_, err := env.logs.Create(ctx, CreateLogInput{Type: "activity", Content: "x", Timestamp: &ms})
		require.NoError(t, err)
	}
	create(time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC))   // today, week
	create(time.Date(2025, 12, 15, 23, 0, 0, 0, time.UTC))  // today, week
	create(time.Date(2025, 12, 14, 23, 59, 0, 0, time.UTC)) // Sunday, previous week
	create(time.Date(2025, 12, 21, 10, 0, 0, 0, time.UTC))  // Sunday, same week
	create(time.Date(2025, 12, 22, 0, 0, 0, 0, time.UTC))   // next Monday

	stats, err := env.stats.Get(ctx, "UTC", "")
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TodayCount)
	assert.Equal(t, 3, stats.WeekCount)
	assert.Nil(t, stats.MonthDays)

	// In Tokyo it is already 21:00 Monday; Sunday 23:59 UTC is Monday 08:59 there.
	stats, err = env.stats.Get(ctx, "Asia/Tokyo", "")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TodayCount)
}

func TestStatsService_URLsAndTopTags(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	work, err := env.tags.Create(ctx, CreateTagInput{Name: "work"})
	require.NoError(t, err)
	home, err := env.tags.Create(ctx, CreateTagInput{Name: "home"})
	require.NoError(t, err)

	for i, meta := range []domain.Metadata{
		{"url": "https://a.example"},
		{"url": 7},
		{"title": "no url"},
		{"url": "https://b.example"},
	} {
		ts := fixedNow.Add(time.Duration(i) * time.Second).UnixMilli()
		_, err := env.logs.Create(ctx, CreateLogInput{
			Type:      "bookmark",
			Content:   "link",
			Timestamp: &ts,
			Metadata:  meta,
			TagIDs:    []string{work.ID},
		})
		require.NoError(t, err)
	}
	_, err = env.logs.Create(ctx, CreateLogInput{Type: "thought", Content: "x", TagIDs: []string{home.ID}})
	require.NoError(t, err)

	stats, err := env.stats.Get(ctx, "UTC", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://b.example", "https://a.example"}, stats.RecentURLs)
	require.Len(t, stats.TopTags, 2)
	assert.Equal(t, "work", stats.TopTags[0].Name)
	assert.Equal(t, 4, stats.TopTags[0].Count)
	assert.Equal(t, "home", stats.TopTags[1].Name)
}

func TestStatsService_Validation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.stats.Get(ctx, "", "")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	_, err = env.stats.Get(ctx, "Nowhere/Special", "")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidTimezone))

	_, err = env.stats.Get(ctx, "UTC", "2025-13")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	stats, err := env.stats.Get(ctx, "UTC", "2025-12")
	require.NoError(t, err)
	assert.NotNil(t, stats.MonthDays)
	assert.Empty(t, stats.MonthDays)
}
