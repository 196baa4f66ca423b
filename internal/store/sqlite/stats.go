package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lifelogapp/lifelog-server/internal/domain"
	"github.com/lifelogapp/lifelog-server/internal/timewindow"
)

// CountLogs counts logs whose timestamp falls inside window.
func (s *Store) CountLogs(ctx context.Context, window timewindow.Range) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM logs
		WHERE timestamp >= ? AND timestamp < ?`,
		window.StartMs,
		window.UpperExclusive(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count logs: %w", err)
	}
	return n, nil
}

// LogTimestamps returns the timestamps of logs inside window, ascending.
func (s *Store) LogTimestamps(ctx context.Context, window timewindow.Range) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp FROM logs
		WHERE timestamp >= ? AND timestamp < ?
		ORDER BY timestamp ASC`,
		window.StartMs,
		window.UpperExclusive(),
	)
	if err != nil {
		return nil, fmt.Errorf("query log timestamps: %w", err)
	}
	defer rows.Close()

	timestamps := []int64{}
	for rows.Next() {
		var ts int64
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("scan log timestamp: %w", err)
		}
		timestamps = append(timestamps, ts)
	}
	return timestamps, rows.Err()
}

// RecentBookmarkURLs returns up to limit URLs from the newest bookmark logs.
// Bookmarks whose metadata lacks a string "url" are skipped.
func (s *Store) RecentBookmarkURLs(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT metadata FROM logs
		WHERE type = ?
		ORDER BY timestamp DESC, id DESC`,
		string(domain.LogTypeBookmark),
	)
	if err != nil {
		return nil, fmt.Errorf("query bookmarks: %w", err)
	}
	defer rows.Close()

	urls := []string{}
	for len(urls) < limit && rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		if u, ok := decodeMetadata(raw).URL(); ok {
			urls = append(urls, u)
		}
	}
	return urls, rows.Err()
}

// TopTags returns up to limit tags ranked by association count, then name.
// Tags with no logs are not ranked.
func (s *Store) TopTags(ctx context.Context, limit int) ([]domain.TagCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.color, t.created_at, COUNT(*) AS n
		FROM log_tags lt
		JOIN tags t ON t.id = lt.tag_id
		GROUP BY t.id
		ORDER BY n DESC, t.name ASC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query top tags: %w", err)
	}
	defer rows.Close()

	top := []domain.TagCount{}
	for rows.Next() {
		var (
			tc    domain.TagCount
			color sql.NullString
		)
		if err := rows.Scan(&tc.ID, &tc.Name, &color, &tc.CreatedAt, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan top tag: %w", err)
		}
		tc.Color = color.String
		top = append(top, tc)
	}
	return top, rows.Err()
}
