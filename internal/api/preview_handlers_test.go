package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelogapp/lifelog-server/internal/preview"
)

func TestPreview(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			http.Error(w, "nope", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head>
<title>Fallback</title>
<meta property="og:title" content="Open Graph Title">
<meta name="description" content="A page about things">
<meta property="og:image" content="/img/cover.png">
<meta property="og:site_name" content="Example">
</head><body>hi</body></html>`)
	}))
	defer page.Close()

	api := setupTestAPI(t, testServerOptions{preview: true})

	resp := api.Get("/api/v1/preview?url=" + url.QueryEscape(page.URL+"/article"))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	p := decode[preview.Preview](t, resp).Data
	assert.Equal(t, "Open Graph Title", p.Title)
	assert.Equal(t, "A page about things", p.Description)
	assert.Equal(t, page.URL+"/img/cover.png", p.Image)
	assert.Equal(t, "Example", p.SiteName)

	t.Run("upstream failure", func(t *testing.T) {
		resp := api.Get("/api/v1/preview?url=" + url.QueryEscape(page.URL+"/broken"))
		assert.Equal(t, http.StatusBadGateway, resp.Code)
		assert.Equal(t, "UPSTREAM", decode[any](t, resp).Code)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		resp := api.Get("/api/v1/preview?url=" + url.QueryEscape("ftp://example.com/file"))
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION", decode[any](t, resp).Code)
	})
}

func TestPreview_DisabledNotRouted(t *testing.T) {
	api := setupTestAPI(t, testServerOptions{})

	resp := api.Get("/api/v1/preview?url=https://example.com")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
