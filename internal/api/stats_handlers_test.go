package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelogapp/lifelog-server/internal/domain"
)

func TestStats(t *testing.T) {
	api := setupTestAPI(t, testServerOptions{})
	tag := createTag(t, api, "reading")

	createLog(t, api, map[string]any{"type": "reading", "content": "chapter 1", "timestamp": ms(9, 0), "tagIds": []string{tag.ID}})
	createLog(t, api, map[string]any{"type": "reading", "content": "chapter 2", "timestamp": ms(10, 0), "tagIds": []string{tag.ID}})
	// Monday 2025-12-01, same week.
	createLog(t, api, map[string]any{
		"type":      "bookmark",
		"content":   "saved",
		"timestamp": ms(-48, 0),
		"metadata":  map[string]any{"url": "https://go.dev"},
	})
	// Sunday 2025-11-30, previous week.
	createLog(t, api, map[string]any{"type": "meal", "content": "brunch", "timestamp": ms(-49, 0)})

	resp := api.Get("/api/v1/stats?tz=UTC&month=2025-12")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	stats := decode[domain.Stats](t, resp).Data
	assert.Equal(t, 2, stats.TodayCount)
	assert.Equal(t, 3, stats.WeekCount)
	assert.Equal(t, []string{"https://go.dev"}, stats.RecentURLs)
	require.Len(t, stats.TopTags, 1)
	assert.Equal(t, "reading", stats.TopTags[0].Name)
	assert.Equal(t, 2, stats.TopTags[0].Count)
	assert.Equal(t, []domain.DayCount{
		{Date: "2025-12-01", Count: 1},
		{Date: "2025-12-03", Count: 2},
	}, stats.MonthDays)
}

func TestStats_WithoutMonth(t *testing.T) {
	api := setupTestAPI(t, testServerOptions{})

	resp := api.Get("/api/v1/stats?tz=Asia/Kolkata")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.NotContains(t, resp.Body.String(), "monthDays")
	assert.Contains(t, resp.Body.String(), `"recentUrls":[]`)
}

func TestStats_Errors(t *testing.T) {
	api := setupTestAPI(t, testServerOptions{})

	resp := api.Get("/api/v1/stats?tz=Bad/Zone")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "INVALID_TIMEZONE", decode[any](t, resp).Code)

	resp = api.Get("/api/v1/stats?tz=UTC&month=2025-13")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION", decode[any](t, resp).Code)
}
