package providers

import (
	"errors"
	"net"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/lifelogapp/lifelog-server/internal/api"
	"github.com/lifelogapp/lifelog-server/internal/config"
	"github.com/lifelogapp/lifelog-server/internal/logger"
	"github.com/lifelogapp/lifelog-server/internal/service"
)

// Version is reported in the OpenAPI document. Overridden at build time.
var Version = "dev"

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	listener net.Listener
}

// ListenAddr returns the address the server is listening on.
func (h *HTTPServerHandle) ListenAddr() string {
	return h.listener.Addr().String()
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := shutdownContext()
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts serving in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	previewHandle := do.MustInvoke[*PreviewHandle](i)
	limiterHandle := do.MustInvoke[*RateLimiterHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Logs:    do.MustInvoke[*service.LogService](i),
		Tags:    do.MustInvoke[*service.TagService](i),
		Search:  do.MustInvoke[*service.SearchService](i),
		Stats:   do.MustInvoke[*service.StatsService](i),
		Preview: previewHandle.Fetcher,
	}

	handler := api.NewServer(storeHandle.Store, services, limiterHandle.KeyedRateLimiter, api.Config{
		Version:            Version,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// A busy port fails the bootstrap instead of the background goroutine.
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, err
	}

	// Start in background
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", ln.Addr().String())

	return &HTTPServerHandle{Server: srv, listener: ln}, nil
}
