package api

import (
	"github.com/lifelogapp/lifelog-server/internal/preview"
	"github.com/lifelogapp/lifelog-server/internal/service"
)

// Services groups the business logic used by the API server.
type Services struct {
	Logs    *service.LogService
	Tags    *service.TagService
	Search  *service.SearchService
	Stats   *service.StatsService
	Preview *preview.Fetcher // nil disables /api/v1/preview
}
