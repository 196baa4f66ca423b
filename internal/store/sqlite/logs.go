package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lifelogapp/lifelog-server/internal/domain"
	"github.com/lifelogapp/lifelog-server/internal/store"
	"github.com/lifelogapp/lifelog-server/internal/timewindow"
)

// logColumns is the ordered list of columns selected in log queries.
// Must match the scan order in scanLog.
const logColumns = `l.id, l.type, l.content, l.timestamp, l.metadata, l.created_at, l.updated_at`

// logOrder is the total order shared by every log listing.
const logOrder = ` ORDER BY l.timestamp DESC, l.id DESC`

// scanLog scans a sql.Row (or sql.Rows via its Scan method) into a domain.Log.
// TagIDs are left empty; callers attach them separately.
func scanLog(scanner interface{ Scan(dest ...any) error }) (*domain.Log, error) {
	var (
		l        domain.Log
		logType  string
		metadata string
	)

	err := scanner.Scan(
		&l.ID,
		&logType,
		&l.Content,
		&l.Timestamp,
		&metadata,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Type = domain.LogType(logType)
	l.Metadata = decodeMetadata(metadata)
	l.TagIDs = []string{}

	return &l, nil
}

// decodeMetadata parses stored metadata, treating anything unreadable as empty.
func decodeMetadata(raw string) domain.Metadata {
	m := domain.Metadata{}
	if raw == "" {
		return m
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return domain.Metadata{}
	}
	return m
}

func encodeMetadata(m domain.Metadata) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return string(b), nil
}

func logKey(l *domain.Log) store.Cursor {
	return store.Cursor{TimestampMs: l.Timestamp, ID: l.ID}
}

// CreateLog inserts a log and its tag associations in one transaction.
// Tag IDs that do not reference an existing tag are skipped; l.TagIDs is
// replaced with the associations actually stored.
func (s *Store) CreateLog(ctx context.Context, l *domain.Log) error {
	metadata, err := encodeMetadata(l.Metadata)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO logs (id, type, content, timestamp, metadata, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			l.ID,
			string(l.Type),
			l.Content,
			l.Timestamp,
			metadata,
			l.CreatedAt,
			l.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert log: %w", err)
		}

		if err := insertLogTags(ctx, tx, l.ID, l.TagIDs); err != nil {
			return err
		}

		l.TagIDs, err = getLogTagIDs(ctx, tx, l.ID)
		return err
	})
}

// GetLog retrieves a log with its tag IDs.
// Returns store.ErrLogNotFound if the log does not exist.
func (s *Store) GetLog(ctx context.Context, logID string) (*domain.Log, error) {
	return getLog(ctx, s.db, logID)
}

func getLog(ctx context.Context, q querier, logID string) (*domain.Log, error) {
	row := q.QueryRowContext(ctx, `SELECT `+logColumns+` FROM logs l WHERE l.id = ?`, logID)

	l, err := scanLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrLogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}

	l.TagIDs, err = getLogTagIDs(ctx, q, logID)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// UpdateLog applies a partial update in one transaction and returns the result.
// A non-nil patch.TagIDs replaces the association set (delete all, then insert).
// Returns store.ErrLogNotFound if the log does not exist.
func (s *Store) UpdateLog(ctx context.Context, logID string, patch store.LogPatch) (*domain.Log, error) {
	var updated *domain.Log

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		l, err := getLog(ctx, tx, logID)
		if err != nil {
			return err
		}

		if patch.Type != nil {
			l.Type = *patch.Type
		}
		if patch.Content != nil {
			l.Content = *patch.Content
		}
		if patch.Timestamp != nil {
			l.Timestamp = *patch.Timestamp
		}
		if patch.Metadata != nil {
			l.Metadata = *patch.Metadata
		}
		l.Touch(patch.NowMs)

		metadata, err := encodeMetadata(l.Metadata)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE logs
			SET type = ?, content = ?, timestamp = ?, metadata = ?, updated_at = ?
			WHERE id = ?`,
			string(l.Type),
			l.Content,
			l.Timestamp,
			metadata,
			l.UpdatedAt,
			l.ID,
		)
		if err != nil {
			return fmt.Errorf("update log: %w", err)
		}

		if patch.TagIDs != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM log_tags WHERE log_id = ?`, l.ID); err != nil {
				return fmt.Errorf("delete log_tags: %w", err)
			}
			if err := insertLogTags(ctx, tx, l.ID, *patch.TagIDs); err != nil {
				return err
			}
			if l.TagIDs, err = getLogTagIDs(ctx, tx, l.ID); err != nil {
				return err
			}
		}

		updated = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteLog removes a log; its tag associations cascade.
// Returns store.ErrLogNotFound if the log does not exist.
func (s *Store) DeleteLog(ctx context.Context, logID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM logs WHERE id = ?`, logID)
	if err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	if n == 0 {
		return store.ErrLogNotFound
	}
	return nil
}

// ListLogsByWindow returns logs whose timestamp falls inside window.
func (s *Store) ListLogsByWindow(ctx context.Context, window timewindow.Range, page store.PaginationParams) (*store.PaginatedResult[*domain.Log], error) {
	return s.listLogs(ctx, logQuery{
		conds: []string{`l.timestamp >= ?`, `l.timestamp < ?`},
		args:  []any{window.StartMs, window.UpperExclusive()},
	}, page)
}

// ListLogsByType returns logs whose type is in types. An empty set applies no filter.
func (s *Store) ListLogsByType(ctx context.Context, types []domain.LogType, page store.PaginationParams) (*store.PaginatedResult[*domain.Log], error) {
	var q logQuery
	if len(types) > 0 {
		q.conds = append(q.conds, `l.type IN (`+placeholders(len(types))+`)`)
		for _, t := range types {
			q.args = append(q.args, string(t))
		}
	}
	return s.listLogs(ctx, q, page)
}

// ListLogsByTag returns logs associated with tagID.
func (s *Store) ListLogsByTag(ctx context.Context, tagID string, page store.PaginationParams) (*store.PaginatedResult[*domain.Log], error) {
	return s.listLogs(ctx, logQuery{
		join:  ` JOIN log_tags lt ON lt.log_id = l.id`,
		conds: []string{`lt.tag_id = ?`},
		args:  []any{tagID},
	}, page)
}

// SearchLogs returns logs whose content contains q.Text literally, newest first.
func (s *Store) SearchLogs(ctx context.Context, q store.SearchQuery) ([]*domain.Log, error) {
	lq := logQuery{
		conds: []string{`l.content LIKE ? ESCAPE '\'`, `l.timestamp >= ?`, `l.timestamp < ?`},
		args:  []any{store.ContainsPattern(q.Text), q.Window.StartMs, q.Window.UpperExclusive()},
	}
	if q.Type != "" {
		lq.conds = append(lq.conds, `l.type = ?`)
		lq.args = append(lq.args, string(q.Type))
	}

	limit := q.Limit
	if limit <= 0 || limit > store.SearchLimit {
		limit = store.SearchLimit
	}

	return s.queryLogs(ctx, lq, limit)
}

// logQuery is the variable part of a log listing.
type logQuery struct {
	join  string
	conds []string
	args  []any
}

// listLogs runs a keyset-paginated listing ordered by (timestamp DESC, id DESC).
// It fetches one row past the limit to learn whether another page exists.
func (s *Store) listLogs(ctx context.Context, q logQuery, page store.PaginationParams) (*store.PaginatedResult[*domain.Log], error) {
	page.Validate()

	if page.After != nil {
		q.conds = append(q.conds, `(l.timestamp < ? OR (l.timestamp = ? AND l.id < ?))`)
		q.args = append(q.args, page.After.TimestampMs, page.After.TimestampMs, page.After.ID)
	}

	logs, err := s.queryLogs(ctx, q, page.Limit+1)
	if err != nil {
		return nil, err
	}

	return store.Paginate(logs, page.Limit, logKey), nil
}

// queryLogs selects up to limit logs matching q, newest first, with tag IDs attached.
func (s *Store) queryLogs(ctx context.Context, q logQuery, limit int) ([]*domain.Log, error) {
	query := `SELECT ` + logColumns + ` FROM logs l` + q.join
	if len(q.conds) > 0 {
		query += ` WHERE ` + strings.Join(q.conds, ` AND `)
	}
	query += logOrder + ` LIMIT ?`
	args := append(q.args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	logs := []*domain.Log{}
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate logs: %w", err)
	}
	rows.Close()

	if err := attachTagIDs(ctx, s.db, logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// insertLogTags associates logID with each tag in tagIDs that exists.
// Unknown tags and duplicates are ignored.
func insertLogTags(ctx context.Context, q querier, logID string, tagIDs []string) error {
	for _, tagID := range tagIDs {
		_, err := q.ExecContext(ctx, `
			INSERT OR IGNORE INTO log_tags (log_id, tag_id)
			SELECT ?, id FROM tags WHERE id = ?`,
			logID,
			tagID,
		)
		if err != nil {
			return fmt.Errorf("insert log_tag: %w", err)
		}
	}
	return nil
}

// getLogTagIDs returns the tag IDs associated with a log, sorted.
func getLogTagIDs(ctx context.Context, q querier, logID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT tag_id FROM log_tags WHERE log_id = ? ORDER BY tag_id`, logID)
	if err != nil {
		return nil, fmt.Errorf("get log tags: %w", err)
	}
	defer rows.Close()

	tagIDs := []string{}
	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			return nil, fmt.Errorf("scan log tag: %w", err)
		}
		tagIDs = append(tagIDs, tagID)
	}
	return tagIDs, rows.Err()
}

// attachTagIDs loads tag IDs for a batch of logs with a single query.
func attachTagIDs(ctx context.Context, q querier, logs []*domain.Log) error {
	if len(logs) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Log, len(logs))
	args := make([]any, len(logs))
	for i, l := range logs {
		byID[l.ID] = l
		args[i] = l.ID
	}

	rows, err := q.QueryContext(ctx, `
		SELECT log_id, tag_id FROM log_tags
		WHERE log_id IN (`+placeholders(len(logs))+`)
		ORDER BY log_id, tag_id`, args...)
	if err != nil {
		return fmt.Errorf("get log tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var logID, tagID string
		if err := rows.Scan(&logID, &tagID); err != nil {
			return fmt.Errorf("scan log tag: %w", err)
		}
		if l, ok := byID[logID]; ok {
			l.TagIDs = append(l.TagIDs, tagID)
		}
	}
	return rows.Err()
}
