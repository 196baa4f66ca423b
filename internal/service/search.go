package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/lifelogapp/lifelog-server/internal/domain"
	domainerrors "github.com/lifelogapp/lifelog-server/internal/errors"
	"github.com/lifelogapp/lifelog-server/internal/store"
	"github.com/lifelogapp/lifelog-server/internal/timewindow"
)

// MinQueryLength is the shortest accepted search string, in characters after trimming.
const MinQueryLength = 2

// SearchRequest holds search parameters as received from a caller.
type SearchRequest struct {
	Query string
	TZ    string
	Type  string // optional
	Date  string // optional YYYY-MM-DD; defaults to the rolling lookback window
}

// SearchService runs bounded substring searches over log content.
type SearchService struct {
	store  store.Store
	now    Clock
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(store store.Store, logger *slog.Logger, opts ...Option) *SearchService {
	o := applyOptions(opts)
	return &SearchService{
		store:  store,
		now:    o.clock,
		logger: logger,
	}
}

// Search returns up to store.SearchLimit entries whose content contains the
// query literally, newest first. Without a date the window is the last
// timewindow.SearchLookbackDays days ending now in the caller's zone.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) ([]*domain.Log, error) {
	q := strings.TrimSpace(req.Query)
	if utf8.RuneCountInString(q) < MinQueryLength {
		return nil, domainerrors.Validationf("q must be at least %d characters", MinQueryLength)
	}

	var (
		window timewindow.Range
		err    error
	)
	tz := strings.TrimSpace(req.TZ)
	if date := strings.TrimSpace(req.Date); date != "" {
		window, err = timewindow.Day(date, tz)
	} else {
		window, err = timewindow.Lookback(s.now(), tz, timewindow.SearchLookbackDays)
	}
	if err != nil {
		return nil, err
	}

	logType := domain.LogType(strings.TrimSpace(req.Type))
	if logType != "" && !logType.Valid() {
		return nil, domainerrors.Validationf("type must be one of: %s", strings.Join(domain.LogTypeNames(), ", "))
	}

	results, err := s.store.SearchLogs(ctx, store.SearchQuery{
		Text:   q,
		Window: window,
		Type:   logType,
		Limit:  store.SearchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("search logs: %w", err)
	}

	s.logger.Debug("search completed", "query", q, "results", len(results))
	return results, nil
}
