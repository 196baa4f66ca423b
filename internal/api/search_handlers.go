package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lifelogapp/lifelog-server/internal/domain"
	"github.com/lifelogapp/lifelog-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchLogs",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search logs",
		Description: "Substring search over entry content within one day or the last 90 days. At most 50 results",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// SearchInput contains search parameters.
type SearchInput struct {
	Q    string `query:"q" doc:"Text to find, at least 2 characters" example:"coffee"`
	TZ   string `query:"tz" doc:"IANA timezone name" example:"Europe/Berlin"`
	Type string `query:"type" doc:"Restrict to one log type"`
	Date string `query:"date" doc:"Restrict to one local day (YYYY-MM-DD)"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Items []*domain.Log `json:"items" doc:"Matching entries, newest first"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body SearchResponse
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	results, err := s.services.Search.Search(ctx, service.SearchRequest{
		Query: input.Q,
		TZ:    input.TZ,
		Type:  input.Type,
		Date:  input.Date,
	})
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: SearchResponse{Items: results}}, nil
}
