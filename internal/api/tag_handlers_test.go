package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelogapp/lifelog-server/internal/domain"
)

func TestTags_CreateListDelete(t *testing.T) {
	api := setupTestAPI(t, testServerOptions{})

	resp := api.Post("/api/v1/tags", map[string]any{"name": "  running ", "color": "#ff0000"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	created := decode[*domain.Tag](t, resp).Data
	assert.Equal(t, "running", created.Name)
	assert.Equal(t, "#ff0000", created.Color)
	assert.Equal(t, testNow.UnixMilli(), created.CreatedAt)

	createTag(t, api, "books")

	resp = api.Get("/api/v1/tags")
	require.Equal(t, http.StatusOK, resp.Code)
	list := decode[ListTagsResponse](t, resp).Data
	require.Len(t, list.Tags, 2)
	assert.Equal(t, "books", list.Tags[0].Name)
	assert.Equal(t, "running", list.Tags[1].Name)

	resp = api.Delete("/api/v1/tags/" + created.ID)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = api.Delete("/api/v1/tags/" + created.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decode[any](t, resp).Code)
}

func TestTags_DuplicateName(t *testing.T) {
	api := setupTestAPI(t, testServerOptions{})
	createTag(t, api, "work")

	resp := api.Post("/api/v1/tags", map[string]any{"name": "work"})
	assert.Equal(t, http.StatusConflict, resp.Code)
	env := decode[any](t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, "CONFLICT", env.Code)
	assert.Contains(t, env.Error, "work")
}

func TestTags_BlankName(t *testing.T) {
	api := setupTestAPI(t, testServerOptions{})

	resp := api.Post("/api/v1/tags", map[string]any{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	env := decode[any](t, resp)
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Contains(t, env.Error, "name")
}

func TestTags_DeleteDetachesFromLogs(t *testing.T) {
	api := setupTestAPI(t, testServerOptions{})
	tag := createTag(t, api, "gym")
	l := createLog(t, api, map[string]any{"type": "activity", "content": "squats", "tagIds": []string{tag.ID}})

	resp := api.Get("/api/v1/tags/" + tag.ID + "/logs")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	page := decode[LogPageResponse](t, resp).Data
	require.Len(t, page.Items, 1)
	assert.Equal(t, l.ID, page.Items[0].ID)

	require.Equal(t, http.StatusNoContent, api.Delete("/api/v1/tags/"+tag.ID).Code)

	resp = api.Get("/api/v1/logs/" + l.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decode[*domain.Log](t, resp).Data.TagIDs)

	resp = api.Get("/api/v1/tags/" + tag.ID + "/logs")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decode[LogPageResponse](t, resp).Data.Items)
}

func TestListLogsByTag_MalformedID(t *testing.T) {
	api := setupTestAPI(t, testServerOptions{})

	resp := api.Get("/api/v1/tags/bogus/logs")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION", decode[any](t, resp).Code)
}
