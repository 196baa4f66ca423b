package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("disk gone") }

func TestHealthCheck_Healthy(t *testing.T) {
	api := setupTestAPI(t, testServerOptions{})

	resp := api.Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)

	env := decode[HealthResponse](t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, 1, env.V)
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, "healthy", env.Data.Components["database"].Status)
	assert.Equal(t, "disabled", env.Data.Components["preview"].Message)
}

func TestHealthCheck_DatabaseDown(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewServer(failingPinger{}, &Services{}, nil, Config{}, logger)
	api := humatest.Wrap(t, s.API())

	resp := api.Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)

	env := decode[HealthResponse](t, resp)
	assert.Equal(t, "unhealthy", env.Data.Status)
	assert.Equal(t, "database ping failed", env.Data.Components["database"].Message)
}
