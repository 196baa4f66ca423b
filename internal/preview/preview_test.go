package preview

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/lifelogapp/lifelog-server/internal/errors"
)

const articleHTML = `<!doctype html>
<html>
<head>
  <title>  Fallback
     Title </title>
  <meta property="og:title" content="Open Graph Title">
  <meta property="og:site_name" content="Example Blog">
  <meta name="description" content="Plain description">
  <meta property="og:image" content="/img/cover.png">
</head>
<body><meta property="og:title" content="ignored in body"></body>
</html>`

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()
	f, err := New(Config{Timeout: 2 * time.Second, AllowPrivateHosts: true}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

func TestFetch_ExtractsMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, articleHTML)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	p, err := f.Fetch(context.Background(), srv.URL+"/posts/1#comments")
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/posts/1", p.URL)
	assert.Equal(t, "Open Graph Title", p.Title)
	assert.Equal(t, "Plain description", p.Description)
	assert.Equal(t, "Example Blog", p.SiteName)
	assert.Equal(t, srv.URL+"/img/cover.png", p.Image)
}

func TestFetch_TitleFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html><head><title>Just &amp; a title</title></head><body>hi</body></html>`)
	}))
	defer srv.Close()

	p, err := newTestFetcher(t).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Just & a title", p.Title)
	assert.Empty(t, p.Description)
	assert.Empty(t, p.Image)
}

func TestFetch_CachesResults(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, articleHTML)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	ctx := context.Background()

	first, err := f.Fetch(ctx, srv.URL+"/a")
	require.NoError(t, err)
	second, err := f.Fetch(ctx, srv.URL+"/a")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetch_NonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = io.WriteString(w, "%PDF-1.7")
	}))
	defer srv.Close()

	p, err := newTestFetcher(t).Fetch(context.Background(), srv.URL+"/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/doc.pdf", p.URL)
	assert.Empty(t, p.Title)
}

func TestFetch_UpstreamErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := newTestFetcher(t)

	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUpstream))
	assert.Equal(t, http.StatusBadGateway, domainerrors.CodeOf(err).HTTPStatus())

	closed := httptest.NewServer(http.NotFoundHandler())
	addr := closed.URL
	closed.Close()

	_, err = f.Fetch(context.Background(), addr)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUpstream))
}

func TestFetch_InvalidURL(t *testing.T) {
	f := newTestFetcher(t)

	for _, raw := range []string{"", "   ", "ftp://example.com/file", "javascript:alert(1)", "/relative/path", "http://"} {
		t.Run(raw, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), raw)
			require.Error(t, err)
			assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation), "got %v", err)
		})
	}
}

func TestFetch_RejectsNonPublicHosts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, articleHTML)
	}))
	defer srv.Close()

	f, err := New(Config{Timeout: 2 * time.Second}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(f.Close)

	for _, raw := range []string{
		srv.URL,
		"http://localhost:8080/admin",
		"http://api.localhost/",
		"http://[::1]/",
		"http://10.0.0.1/",
		"http://192.168.1.1/router",
		"http://169.254.169.254/latest/meta-data/",
		"http://100.64.0.1/",
		"http://0.0.0.0/",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), raw)
			require.Error(t, err)
			assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation), "got %v", err)
		})
	}
	assert.Zero(t, hits.Load())
}

func TestNewClient_RefusesNonPublicDial(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	_, err := newClient(time.Second, false).Get(srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, errNonPublicAddress)
	assert.Zero(t, hits.Load())

	resp, err := newClient(time.Second, true).Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int32(1), hits.Load())
}

func TestIsPublicAddr(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"93.184.216.34", true},
		{"2606:2800:220:1:248:1893:25c8:1946", true},
		{"::ffff:93.184.216.34", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.1", false},
		{"192.168.0.1", false},
		{"169.254.169.254", false},
		{"fe80::1", false},
		{"fc00::1", false},
		{"100.64.0.1", false},
		{"0.0.0.0", false},
		{"224.0.0.1", false},
		{"::ffff:127.0.0.1", false},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, isPublicAddr(netip.MustParseAddr(tt.addr)))
		})
	}
}

func TestExtract_TwitterAndSecureImage(t *testing.T) {
	page := `<head>
<meta name="twitter:title" content="Tweet title">
<meta name="twitter:description" content="Tweet description">
<meta property="og:image" content="http://cdn.example/plain.png">
<meta property="og:image:secure_url" content="https://cdn.example/secure.png">
<meta name="description" content="">
</head>`

	meta, err := extract(strings.NewReader(page))
	require.NoError(t, err)

	assert.Equal(t, "Tweet title", meta.title())
	assert.Equal(t, "Tweet description", meta.description())
	assert.Equal(t, "https://cdn.example/secure.png", meta.image())
}

func TestIsHTML(t *testing.T) {
	assert.True(t, isHTML(""))
	assert.True(t, isHTML("text/html"))
	assert.True(t, isHTML("TEXT/HTML; charset=ISO-8859-1"))
	assert.True(t, isHTML("application/xhtml+xml"))
	assert.False(t, isHTML("image/png"))
	assert.False(t, isHTML(";;;"))
}
