package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelogapp/lifelog-server/internal/ratelimit"
)

func TestWriteRateLimit(t *testing.T) {
	limiter := ratelimit.New(0.0001, 2)
	t.Cleanup(limiter.Stop)
	api := setupTestAPI(t, testServerOptions{limiter: limiter})

	body := map[string]any{"type": "thought", "content": "again"}
	require.Equal(t, http.StatusCreated, api.Post("/api/v1/logs", body).Code)
	require.Equal(t, http.StatusCreated, api.Post("/api/v1/logs", body).Code)

	resp := api.Post("/api/v1/logs", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "1", resp.Header().Get("Retry-After"))
	env := decode[any](t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, 1, env.V)
	assert.Equal(t, "RATE_LIMITED", env.Code)

	// Reads are never limited.
	resp = api.Get("/api/v1/tags")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:5000", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:5000", "198.51.100.4"},
		{"remote addr", nil, "192.0.2.9:1234", "192.0.2.9"},
		{"remote without port", nil, "192.0.2.10", "192.0.2.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}
