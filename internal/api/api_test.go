package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/lifelogapp/lifelog-server/internal/domain"
	"github.com/lifelogapp/lifelog-server/internal/preview"
	"github.com/lifelogapp/lifelog-server/internal/ratelimit"
	"github.com/lifelogapp/lifelog-server/internal/service"
	"github.com/lifelogapp/lifelog-server/internal/store/sqlite"
	"github.com/lifelogapp/lifelog-server/internal/validation"
)

// testNow is Wednesday 2025-12-03 15:00 UTC.
var testNow = time.Date(2025, 12, 3, 15, 0, 0, 0, time.UTC)

// testEnvelope mirrors Envelope with a typed payload.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details"`
}

type testServerOptions struct {
	limiter *ratelimit.KeyedRateLimiter
	preview bool
}

// setupTestAPI builds a server over a fresh SQLite database.
func setupTestAPI(t *testing.T, opts testServerOptions) humatest.TestAPI {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	v := validation.New()
	clock := service.WithClock(func() time.Time { return testNow })

	services := &Services{
		Logs:   service.NewLogService(st, v, logger, clock),
		Tags:   service.NewTagService(st, v, logger, clock),
		Search: service.NewSearchService(st, logger, clock),
		Stats:  service.NewStatsService(st, logger, clock),
	}
	if opts.preview {
		fetcher, err := preview.New(preview.Config{Timeout: 2 * time.Second, AllowPrivateHosts: true}, logger)
		require.NoError(t, err)
		t.Cleanup(fetcher.Close)
		services.Preview = fetcher
	}

	s := NewServer(st, services, opts.limiter, Config{}, logger)
	return humatest.Wrap(t, s.API())
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), "body: %s", resp.Body.String())
	return env
}

func createLog(t *testing.T, api humatest.TestAPI, body map[string]any) *domain.Log {
	t.Helper()
	resp := api.Post("/api/v1/logs", body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[*domain.Log](t, resp).Data
}

func createTag(t *testing.T, api humatest.TestAPI, name string) *domain.Tag {
	t.Helper()
	resp := api.Post("/api/v1/tags", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[*domain.Tag](t, resp).Data
}
