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
	"github.com/lifelogapp/lifelog-server/internal/validation"
)

// CreateTagInput is the payload for creating a tag.
type CreateTagInput struct {
	Name  string `json:"name" validate:"notblank,max=100"`
	Color string `json:"color,omitempty" validate:"max=32"`
}

// TagService orchestrates tag operations.
// Tags exist independently of logs; deleting one only detaches it.
type TagService struct {
	store     store.Store
	validator *validation.Validator
	auditor   Auditor
	now       Clock
	logger    *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, validator *validation.Validator, logger *slog.Logger, opts ...Option) *TagService {
	o := applyOptions(opts)
	return &TagService{
		store:     store,
		validator: validator,
		auditor:   o.auditor,
		now:       o.clock,
		logger:    logger,
	}
}

// List returns every tag ordered by name.
func (s *TagService) List(ctx context.Context) ([]*domain.Tag, error) {
	return s.store.ListTags(ctx)
}

// Create trims the name and stores a new tag.
// A name already in use (exact, case-sensitive match) fails with Conflict
// and leaves the tag set unchanged.
func (s *TagService) Create(ctx context.Context, in CreateTagInput) (*domain.Tag, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)

	existing, err := s.store.GetTagByName(ctx, name)
	switch {
	case err == nil:
		return nil, domainerrors.Conflictf("tag %q already exists", existing.Name)
	case !domainerrors.Is(err, store.ErrTagNotFound):
		return nil, fmt.Errorf("check tag name: %w", err)
	}

	tagID, err := id.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate tag id: %w", err)
	}

	tag := &domain.Tag{
		ID:        tagID,
		Name:      name,
		Color:     strings.TrimSpace(in.Color),
		CreatedAt: s.now().UnixMilli(),
	}
	if err := s.store.CreateTag(ctx, tag); err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}

	s.auditor.Publish(audit.EventTagCreated, tag.ID)
	s.logger.Info("tag created", "tag_id", tag.ID, "name", tag.Name)

	return tag, nil
}

// Delete removes a tag and detaches it from every log.
func (s *TagService) Delete(ctx context.Context, tagID string) error {
	if err := requireID("id", tagID); err != nil {
		return err
	}
	if err := s.store.DeleteTag(ctx, tagID); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	s.auditor.Publish(audit.EventTagDeleted, tagID)
	s.logger.Info("tag deleted", "tag_id", tagID)

	return nil
}
