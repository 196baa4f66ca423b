// Package preview fetches a web page and extracts link preview metadata
// (title, description, image, site name) from its HTML head.
package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	domainerrors "github.com/lifelogapp/lifelog-server/internal/errors"
)

// Defaults for Config zero values.
const (
	DefaultTimeout   = 10 * time.Second
	DefaultCacheSize = 1000
	DefaultCacheTTL  = time.Hour
	// MaxBodyBytes caps how much of a page is read.
	MaxBodyBytes = 2 << 20
)

const userAgent = "lifelog-preview/1.0"

// Preview is the metadata extracted from a page.
type Preview struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	SiteName    string `json:"siteName,omitempty"`
}

// Config configures a Fetcher.
type Config struct {
	Timeout   time.Duration
	CacheSize int64 // max cached previews
	CacheTTL  time.Duration

	// AllowPrivateHosts permits loopback, private and link-local targets.
	AllowPrivateHosts bool

	// Client replaces the default client, including its address filtering.
	Client *http.Client
}

// errNonPublicAddress marks a dial refused because the target is not a public address.
var errNonPublicAddress = errors.New("non-public address")

// carrierGradeNAT is the shared address space of RFC 6598.
var carrierGradeNAT = netip.MustParsePrefix("100.64.0.0/10")

// Fetcher retrieves previews and caches them in a bounded TTL cache.
type Fetcher struct {
	client       *http.Client
	allowPrivate bool
	cache        *ristretto.Cache[string, *Preview]
	ttl          time.Duration
	logger       *slog.Logger
}

// New creates a Fetcher. Close releases the cache.
func New(cfg Config, logger *slog.Logger) (*Fetcher, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	client := cfg.Client
	if client == nil {
		client = newClient(cfg.Timeout, cfg.AllowPrivateHosts)
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, *Preview]{
		NumCounters: cfg.CacheSize * 10,
		MaxCost:     cfg.CacheSize,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create preview cache: %w", err)
	}

	return &Fetcher{
		client:       client,
		allowPrivate: cfg.AllowPrivateHosts,
		cache:        cache,
		ttl:          cfg.CacheTTL,
		logger:       logger,
	}, nil
}

// newClient builds the default client. Unless allowPrivate is set, every
// connection (redirects included) is checked after DNS resolution.
func newClient(timeout time.Duration, allowPrivate bool) *http.Client {
	dialer := &net.Dialer{Timeout: timeout}
	if !allowPrivate {
		dialer.Control = func(_, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			ip, err := netip.ParseAddr(host)
			if err != nil {
				return err
			}
			if !isPublicAddr(ip) {
				return fmt.Errorf("%w: %s", errNonPublicAddress, ip)
			}
			return nil
		}
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &http.Client{Timeout: timeout, Transport: transport}
}

// isPublicAddr reports whether ip is a globally routable unicast address.
func isPublicAddr(ip netip.Addr) bool {
	ip = ip.Unmap()
	return ip.IsGlobalUnicast() &&
		!ip.IsPrivate() &&
		!carrierGradeNAT.Contains(ip)
}

// Close releases cache resources.
func (f *Fetcher) Close() {
	f.cache.Close()
}

// Fetch returns the preview for rawURL, from cache when fresh.
// A URL that is not absolute http(s) is a validation error; network
// failures and non-2xx responses are upstream errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Preview, error) {
	u, err := normalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	if !f.allowPrivate {
		if err := checkHost(u); err != nil {
			return nil, err
		}
	}
	key := u.String()

	if p, ok := f.cache.Get(key); ok {
		return p, nil
	}

	p, err := f.fetch(ctx, u)
	if err != nil {
		return nil, err
	}

	f.cache.SetWithTTL(key, p, 1, f.ttl)
	f.cache.Wait()

	f.logger.Debug("preview fetched", "url", key, "title", p.Title)
	return p, nil
}

func (f *Fetcher) fetch(ctx context.Context, u *url.URL) (*Preview, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, domainerrors.Validationf("url is invalid: %v", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		if errors.Is(err, errNonPublicAddress) {
			return nil, domainerrors.Validationf("url host %s does not resolve to a public address", u.Hostname())
		}
		return nil, domainerrors.Upstreamf("fetch %s failed", u.Host).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domainerrors.Upstreamf("fetch %s: HTTP %d", u.Host, resp.StatusCode)
	}

	p := &Preview{URL: u.String()}

	if !isHTML(resp.Header.Get("Content-Type")) {
		return p, nil
	}

	body := io.LimitReader(resp.Body, MaxBodyBytes)
	meta, err := extract(body)
	if err != nil {
		return nil, domainerrors.Upstreamf("parse %s", u.Host).WithCause(err)
	}

	base := u
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL
	}

	p.Title = meta.title()
	p.Description = meta.description()
	p.SiteName = meta.props["og:site_name"]
	p.Image = resolve(base, meta.image())
	return p, nil
}

// normalizeURL trims input, requires an absolute http(s) URL, and drops the fragment.
func normalizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, domainerrors.Validation("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, domainerrors.Validation("url is not a valid URL")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, domainerrors.Validation("url must use http or https")
	}
	if u.Host == "" {
		return nil, domainerrors.Validation("url must include a host")
	}
	u.Fragment = ""
	return u, nil
}

// checkHost rejects literal non-public IPs and localhost names before any
// network access. Names that resolve to such addresses are refused at dial time.
func checkHost(u *url.URL) error {
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return domainerrors.Validationf("url host %s is not public", host)
	}
	if ip, err := netip.ParseAddr(host); err == nil && !isPublicAddr(ip) {
		return domainerrors.Validationf("url host %s is not public", host)
	}
	return nil
}

func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

func resolve(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(r).String()
}
