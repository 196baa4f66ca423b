package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lifelogapp/lifelog-server/internal/domain"
)

func (s *Server) registerStatsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Get stats",
		Description: "Today and week counts, recent bookmark URLs, top tags, and optional per-day counts for a month",
		Tags:        []string{"Stats"},
	}, s.handleGetStats)
}

// StatsInput contains stats parameters.
type StatsInput struct {
	TZ    string `query:"tz" doc:"IANA timezone name" example:"Asia/Kolkata"`
	Month string `query:"month" doc:"Month for per-day counts (YYYY-MM)" example:"2025-12"`
}

// StatsOutput wraps stats for Huma.
type StatsOutput struct {
	Body *domain.Stats
}

func (s *Server) handleGetStats(ctx context.Context, input *StatsInput) (*StatsOutput, error) {
	stats, err := s.services.Stats.Get(ctx, input.TZ, input.Month)
	if err != nil {
		return nil, err
	}
	return &StatsOutput{Body: stats}, nil
}
