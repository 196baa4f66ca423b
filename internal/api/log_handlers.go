package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lifelogapp/lifelog-server/internal/domain"
	"github.com/lifelogapp/lifelog-server/internal/service"
	"github.com/lifelogapp/lifelog-server/internal/store"
)

func (s *Server) registerLogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listLogsByDay",
		Method:      http.MethodGet,
		Path:        "/api/v1/logs",
		Summary:     "List logs by day",
		Description: "Returns entries on one local calendar day, newest first, one page at a time",
		Tags:        []string{"Logs"},
	}, s.handleListLogsByDay)

	huma.Register(s.api, huma.Operation{
		OperationID: "listLogsArchive",
		Method:      http.MethodGet,
		Path:        "/api/v1/logs/archive",
		Summary:     "List logs by type",
		Description: "Returns entries across all time, optionally filtered to a set of types",
		Tags:        []string{"Logs"},
	}, s.handleListLogsArchive)

	huma.Register(s.api, huma.Operation{
		OperationID: "listLogsByTag",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{id}/logs",
		Summary:     "List logs by tag",
		Description: "Returns entries carrying a tag, newest first",
		Tags:        []string{"Logs", "Tags"},
	}, s.handleListLogsByTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLog",
		Method:      http.MethodGet,
		Path:        "/api/v1/logs/{id}",
		Summary:     "Get log",
		Description: "Returns a single entry with its tag IDs",
		Tags:        []string{"Logs"},
	}, s.handleGetLog)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createLog",
		Method:        http.MethodPost,
		Path:          "/api/v1/logs",
		Summary:       "Create log",
		Description:   "Creates an entry. Malformed or unknown tag IDs are ignored",
		Tags:          []string{"Logs"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateLog)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateLog",
		Method:      http.MethodPatch,
		Path:        "/api/v1/logs/{id}",
		Summary:     "Update log",
		Description: "Updates supplied fields only. A supplied tagIds replaces the whole tag set",
		Tags:        []string{"Logs"},
	}, s.handleUpdateLog)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteLog",
		Method:        http.MethodDelete,
		Path:          "/api/v1/logs/{id}",
		Summary:       "Delete log",
		Description:   "Deletes an entry and detaches its tags",
		Tags:          []string{"Logs"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteLog)
}

// === DTOs ===

// PageParams are the shared pagination query parameters.
type PageParams struct {
	Limit  string `query:"limit" doc:"Page size, clamped to 1-100; non-numeric falls back to 50" example:"50"`
	Cursor string `query:"cursor" doc:"Opaque cursor from a previous page's nextCursor"`
}

func (p PageParams) request() service.PageRequest {
	return service.PageRequest{Limit: p.Limit, Cursor: p.Cursor}
}

// LogPageResponse is one page of entries.
type LogPageResponse struct {
	Items      []*domain.Log `json:"items" doc:"Entries ordered by timestamp then id, descending"`
	NextCursor *string       `json:"nextCursor" doc:"Cursor for the next page; null on the last page"`
	HasMore    bool          `json:"hasMore" doc:"Whether another page exists"`
}

// LogPageOutput wraps a page of entries for Huma.
type LogPageOutput struct {
	Body LogPageResponse
}

func pageOutput(page *store.PaginatedResult[*domain.Log]) *LogPageOutput {
	return &LogPageOutput{
		Body: LogPageResponse{
			Items:      page.Items,
			NextCursor: page.NextCursor,
			HasMore:    page.HasMore,
		},
	}
}

// ListLogsByDayInput contains parameters for listing a day.
type ListLogsByDayInput struct {
	Date string `query:"date" doc:"Local calendar day (YYYY-MM-DD)" example:"2025-03-09"`
	TZ   string `query:"tz" doc:"IANA timezone name" example:"America/New_York"`
	PageParams
}

// ListLogsArchiveInput contains parameters for listing by type.
type ListLogsArchiveInput struct {
	Types []string `query:"types" doc:"Log types, comma-separated or repeated"`
	Type  string   `query:"type" doc:"A single log type"`
	PageParams

	rawTypes []string
}

// Resolve collects every types/type value exactly as sent, covering both the
// repeated and comma-separated forms.
func (i *ListLogsArchiveInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	q := u.Query()
	i.rawTypes = append(append([]string{}, q["types"]...), q["type"]...)
	return nil
}

// ListLogsByTagInput contains parameters for listing a tag's entries.
type ListLogsByTagInput struct {
	ID string `path:"id" doc:"Tag ID"`
	PageParams
}

// LogIDInput addresses a single entry.
type LogIDInput struct {
	ID string `path:"id" doc:"Log ID"`
}

// LogOutput wraps a single entry for Huma.
type LogOutput struct {
	Body *domain.Log
}

// CreateLogRequest is the request body for creating an entry.
type CreateLogRequest struct {
	Type      string          `json:"type" doc:"One of activity, wake_up, meal, location, thought, reading, media, bookmark"`
	Content   string          `json:"content" doc:"Entry text; must not be blank"`
	Timestamp *int64          `json:"timestamp,omitempty" doc:"Event time in epoch milliseconds; defaults to now"`
	Metadata  domain.Metadata `json:"metadata,omitempty" doc:"Arbitrary key/value data, e.g. a bookmark url"`
	TagIDs    []string        `json:"tagIds,omitempty" doc:"Tag IDs to attach"`
}

// CreateLogInput wraps the create request for Huma.
type CreateLogInput struct {
	Body CreateLogRequest
}

// UpdateLogRequest is the request body for a partial update.
type UpdateLogRequest struct {
	Type      *string          `json:"type,omitempty" doc:"New entry kind"`
	Content   *string          `json:"content,omitempty" doc:"New entry text"`
	Timestamp *int64           `json:"timestamp,omitempty" doc:"New event time in epoch milliseconds"`
	Metadata  *domain.Metadata `json:"metadata,omitempty" doc:"Replacement metadata"`
	TagIDs    *[]string        `json:"tagIds,omitempty" doc:"Replacement tag set; an empty list clears all tags"`
}

// UpdateLogInput wraps the update request for Huma.
type UpdateLogInput struct {
	ID   string `path:"id" doc:"Log ID"`
	Body UpdateLogRequest
}

// === Handlers ===

func (s *Server) handleListLogsByDay(ctx context.Context, input *ListLogsByDayInput) (*LogPageOutput, error) {
	page, err := s.services.Logs.ListByDay(ctx, input.Date, input.TZ, input.request())
	if err != nil {
		return nil, err
	}
	return pageOutput(page), nil
}

func (s *Server) handleListLogsArchive(ctx context.Context, input *ListLogsArchiveInput) (*LogPageOutput, error) {
	page, err := s.services.Logs.ListByTypes(ctx, input.rawTypes, input.request())
	if err != nil {
		return nil, err
	}
	return pageOutput(page), nil
}

func (s *Server) handleListLogsByTag(ctx context.Context, input *ListLogsByTagInput) (*LogPageOutput, error) {
	page, err := s.services.Logs.ListByTag(ctx, input.ID, input.request())
	if err != nil {
		return nil, err
	}
	return pageOutput(page), nil
}

func (s *Server) handleGetLog(ctx context.Context, input *LogIDInput) (*LogOutput, error) {
	l, err := s.services.Logs.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &LogOutput{Body: l}, nil
}

func (s *Server) handleCreateLog(ctx context.Context, input *CreateLogInput) (*LogOutput, error) {
	l, err := s.services.Logs.Create(ctx, service.CreateLogInput{
		Type:      input.Body.Type,
		Content:   input.Body.Content,
		Timestamp: input.Body.Timestamp,
		Metadata:  input.Body.Metadata,
		TagIDs:    input.Body.TagIDs,
	})
	if err != nil {
		return nil, err
	}
	return &LogOutput{Body: l}, nil
}

func (s *Server) handleUpdateLog(ctx context.Context, input *UpdateLogInput) (*LogOutput, error) {
	l, err := s.services.Logs.Update(ctx, input.ID, service.UpdateLogInput{
		Type:      input.Body.Type,
		Content:   input.Body.Content,
		Timestamp: input.Body.Timestamp,
		Metadata:  input.Body.Metadata,
		TagIDs:    input.Body.TagIDs,
	})
	if err != nil {
		return nil, err
	}
	return &LogOutput{Body: l}, nil
}

func (s *Server) handleDeleteLog(ctx context.Context, input *LogIDInput) (*struct{}, error) {
	if err := s.services.Logs.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
