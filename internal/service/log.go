package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lifelogapp/lifelog-server/internal/audit"
	"github.com/lifelogapp/lifelog-server/internal/domain"
	domainerrors "github.com/lifelogapp/lifelog-server/internal/errors"
	"github.com/lifelogapp/lifelog-server/internal/id"
	"github.com/lifelogapp/lifelog-server/internal/store"
	"github.com/lifelogapp/lifelog-server/internal/timewindow"
	"github.com/lifelogapp/lifelog-server/internal/validation"
)

// CreateLogInput is the payload for creating a log entry.
type CreateLogInput struct {
	Type      string          `json:"type" validate:"required,logtype"`
	Content   string          `json:"content" validate:"notblank"`
	Timestamp *int64          `json:"timestamp,omitempty" validate:"omitnil,gt=0"`
	Metadata  domain.Metadata `json:"metadata,omitempty"`
	TagIDs    []string        `json:"tagIds,omitempty"`
}

// UpdateLogInput is a partial update. Nil fields are left unchanged;
// a non-nil TagIDs replaces the whole tag set.
type UpdateLogInput struct {
	Type      *string          `json:"type,omitempty" validate:"omitnil,logtype"`
	Content   *string          `json:"content,omitempty" validate:"omitnil,notblank"`
	Timestamp *int64           `json:"timestamp,omitempty" validate:"omitnil,gt=0"`
	Metadata  *domain.Metadata `json:"metadata,omitempty"`
	TagIDs    *[]string        `json:"tagIds,omitempty"`
}

// LogService orchestrates log entry reads and writes.
type LogService struct {
	store     store.Store
	validator *validation.Validator
	auditor   Auditor
	now       Clock
	logger    *slog.Logger
}

// NewLogService creates a new log service.
func NewLogService(store store.Store, validator *validation.Validator, logger *slog.Logger, opts ...Option) *LogService {
	o := applyOptions(opts)
	return &LogService{
		store:     store,
		validator: validator,
		auditor:   o.auditor,
		now:       o.clock,
		logger:    logger,
	}
}

// ListByDay returns one page of entries on a local calendar day.
// date is validated before tz, and both before the cursor.
func (s *LogService) ListByDay(ctx context.Context, date, tz string, page PageRequest) (*store.PaginatedResult[*domain.Log], error) {
	window, err := timewindow.Day(strings.TrimSpace(date), strings.TrimSpace(tz))
	if err != nil {
		return nil, err
	}
	params, err := page.params()
	if err != nil {
		return nil, err
	}
	return s.store.ListLogsByWindow(ctx, window, params)
}

// ListByTypes returns one page of entries whose type is in types.
// Each element may itself be a comma-separated list; blanks are ignored.
// An empty set applies no type filter.
func (s *LogService) ListByTypes(ctx context.Context, types []string, page PageRequest) (*store.PaginatedResult[*domain.Log], error) {
	parsed, err := ParseLogTypes(types)
	if err != nil {
		return nil, err
	}
	params, err := page.params()
	if err != nil {
		return nil, err
	}
	return s.store.ListLogsByType(ctx, parsed, params)
}

// ListByTag returns one page of entries carrying tagID.
// An unknown but well-formed tag yields an empty page.
func (s *LogService) ListByTag(ctx context.Context, tagID string, page PageRequest) (*store.PaginatedResult[*domain.Log], error) {
	if err := requireID("tagId", tagID); err != nil {
		return nil, err
	}
	params, err := page.params()
	if err != nil {
		return nil, err
	}
	return s.store.ListLogsByTag(ctx, tagID, params)
}

// Get returns a single entry with its tag IDs.
func (s *LogService) Get(ctx context.Context, logID string) (*domain.Log, error) {
	if err := requireID("id", logID); err != nil {
		return nil, err
	}
	return s.store.GetLog(ctx, logID)
}

// Create validates and stores a new entry.
// Malformed tag IDs are dropped silently, as are well-formed IDs of tags that
// do not exist.
func (s *LogService) Create(ctx context.Context, in CreateLogInput) (*domain.Log, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	logID, err := id.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate log id: %w", err)
	}

	now := s.now().UnixMilli()
	ts := now
	if in.Timestamp != nil {
		ts = *in.Timestamp
	}
	metadata := in.Metadata
	if metadata == nil {
		metadata = domain.Metadata{}
	}

	l := &domain.Log{
		ID:        logID,
		Type:      domain.LogType(in.Type),
		Content:   strings.TrimSpace(in.Content),
		Timestamp: ts,
		Metadata:  metadata,
		TagIDs:    id.FilterValid(in.TagIDs),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateLog(ctx, l); err != nil {
		return nil, fmt.Errorf("create log: %w", err)
	}

	s.auditor.Publish(audit.EventLogCreated, l.ID)
	s.logger.Info("log created",
		"log_id", l.ID,
		"type", l.Type,
		"tags", len(l.TagIDs),
	)

	return l, nil
}

// Update applies a partial update and returns the stored result.
func (s *LogService) Update(ctx context.Context, logID string, in UpdateLogInput) (*domain.Log, error) {
	if err := requireID("id", logID); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	patch := store.LogPatch{
		Timestamp: in.Timestamp,
		Metadata:  in.Metadata,
		NowMs:     s.now().UnixMilli(),
	}
	if in.Type != nil {
		t := domain.LogType(*in.Type)
		patch.Type = &t
	}
	if in.Content != nil {
		c := strings.TrimSpace(*in.Content)
		patch.Content = &c
	}
	if in.Metadata != nil && *in.Metadata == nil {
		empty := domain.Metadata{}
		patch.Metadata = &empty
	}
	if in.TagIDs != nil {
		tagIDs := id.FilterValid(*in.TagIDs)
		patch.TagIDs = &tagIDs
	}

	l, err := s.store.UpdateLog(ctx, logID, patch)
	if err != nil {
		return nil, fmt.Errorf("update log: %w", err)
	}

	s.auditor.Publish(audit.EventLogUpdated, l.ID)
	s.logger.Info("log updated", "log_id", l.ID)

	return l, nil
}

// Delete removes an entry and its tag associations.
func (s *LogService) Delete(ctx context.Context, logID string) error {
	if err := requireID("id", logID); err != nil {
		return err
	}
	if err := s.store.DeleteLog(ctx, logID); err != nil {
		return fmt.Errorf("delete log: %w", err)
	}

	s.auditor.Publish(audit.EventLogDeleted, logID)
	s.logger.Info("log deleted", "log_id", logID)

	return nil
}

// ParseLogTypes flattens repeated and comma-separated type values and checks
// each against the closed set. Duplicates collapse.
func ParseLogTypes(values []string) ([]domain.LogType, error) {
	var (
		types []domain.LogType
		seen  = make(map[domain.LogType]bool)
	)
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			t := domain.LogType(part)
			if !t.Valid() {
				return nil, domainerrors.ValidationWithDetails(
					fmt.Sprintf("types: unknown log type %q", part),
					map[string]any{"types": domain.LogTypeNames()},
				)
			}
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}
	return types, nil
}

// requireID rejects identifiers that are not well formed before any storage access.
func requireID(field, value string) error {
	if !id.Valid(value) {
		return domainerrors.Validationf("%s must be a valid id", field)
	}
	return nil
}
