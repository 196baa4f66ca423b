package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/lifelogapp/lifelog-server/internal/domain"
	"github.com/lifelogapp/lifelog-server/internal/store"
	"github.com/lifelogapp/lifelog-server/internal/timewindow"
)

// Stats sizes.
const (
	RecentURLLimit = 10
	TopTagLimit    = 10
)

// StatsService aggregates dashboard counts. Every window comes from
// timewindow, so stats agree with listings about day and week boundaries.
type StatsService struct {
	store  store.Store
	now    Clock
	logger *slog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(store store.Store, logger *slog.Logger, opts ...Option) *StatsService {
	o := applyOptions(opts)
	return &StatsService{
		store:  store,
		now:    o.clock,
		logger: logger,
	}
}

// Get computes stats for tz at the current instant.
// MonthDays is filled only when month (YYYY-MM) is given, and omits empty days.
func (s *StatsService) Get(ctx context.Context, tz, month string) (*domain.Stats, error) {
	tz = strings.TrimSpace(tz)
	month = strings.TrimSpace(month)
	now := s.now()

	loc, err := timewindow.LoadZone(tz)
	if err != nil {
		return nil, err
	}
	today, err := timewindow.Today(now, tz)
	if err != nil {
		return nil, err
	}
	week, err := timewindow.Week(now, tz)
	if err != nil {
		return nil, err
	}
	var monthRange *timewindow.Range
	if month != "" {
		r, err := timewindow.Month(month, tz)
		if err != nil {
			return nil, err
		}
		monthRange = &r
	}

	stats := &domain.Stats{}

	if stats.TodayCount, err = s.store.CountLogs(ctx, today); err != nil {
		return nil, fmt.Errorf("count today: %w", err)
	}
	if stats.WeekCount, err = s.store.CountLogs(ctx, week); err != nil {
		return nil, fmt.Errorf("count week: %w", err)
	}
	if stats.RecentURLs, err = s.store.RecentBookmarkURLs(ctx, RecentURLLimit); err != nil {
		return nil, fmt.Errorf("recent urls: %w", err)
	}
	if stats.TopTags, err = s.store.TopTags(ctx, TopTagLimit); err != nil {
		return nil, fmt.Errorf("top tags: %w", err)
	}

	if monthRange != nil {
		timestamps, err := s.store.LogTimestamps(ctx, *monthRange)
		if err != nil {
			return nil, fmt.Errorf("month timestamps: %w", err)
		}
		stats.MonthDays = bucketByDay(timestamps, loc)
	}

	return stats, nil
}

// bucketByDay counts timestamps per local calendar day, ascending by date.
// Days without entries are absent.
func bucketByDay(timestamps []int64, loc *time.Location) []domain.DayCount {
	counts := make(map[string]int)
	for _, ts := range timestamps {
		counts[timewindow.LocalDate(ts, loc)]++
	}

	days := make([]domain.DayCount, 0, len(counts))
	for date, n := range counts {
		days = append(days, domain.DayCount{Date: date, Count: n})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}
