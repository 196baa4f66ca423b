package providers

import (
	"github.com/samber/do/v2"

	"github.com/lifelogapp/lifelog-server/internal/config"
	"github.com/lifelogapp/lifelog-server/internal/logger"
	"github.com/lifelogapp/lifelog-server/internal/preview"
	"github.com/lifelogapp/lifelog-server/internal/ratelimit"
)

// PreviewHandle wraps the link preview fetcher. Fetcher is nil when previews
// are disabled.
type PreviewHandle struct {
	*preview.Fetcher
}

// Shutdown implements do.Shutdownable.
func (h *PreviewHandle) Shutdown() error {
	if h.Fetcher != nil {
		h.Close()
	}
	return nil
}

// ProvidePreview provides the link preview fetcher.
func ProvidePreview(i do.Injector) (*PreviewHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Preview.Enabled {
		log.Info("Link previews disabled by configuration")
		return &PreviewHandle{}, nil
	}

	fetcher, err := preview.New(preview.Config{
		Timeout:           cfg.Preview.Timeout,
		CacheSize:         cfg.Preview.CacheSize,
		AllowPrivateHosts: cfg.Preview.AllowPrivate,
	}, log.WithComponent("preview").Logger)
	if err != nil {
		return nil, err
	}
	return &PreviewHandle{Fetcher: fetcher}, nil
}

// RateLimiterHandle wraps the write rate limiter with shutdown capability.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideRateLimiter provides the per-client write rate limiter.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return &RateLimiterHandle{
		KeyedRateLimiter: ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	}, nil
}
