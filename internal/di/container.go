// Package di provides dependency injection configuration for the lifelog server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/lifelogapp/lifelog-server/internal/config"
	"github.com/lifelogapp/lifelog-server/internal/di/providers"
	"github.com/lifelogapp/lifelog-server/internal/logger"
	"github.com/lifelogapp/lifelog-server/internal/service"
	"github.com/lifelogapp/lifelog-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
// args are the command-line arguments used to load configuration.
func NewContainer(args []string) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig(args))
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Supporting infrastructure
	do.Provide(injector, providers.ProvideAuditor)
	do.Provide(injector, providers.ProvidePreview)
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideValidator)

	// Business services
	do.Provide(injector, providers.ProvideLogService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideSearchService)
	do.Provide(injector, providers.ProvideStatsService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
// Any provider failure is returned rather than panicking.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}

	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*logger.Logger](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.AuditHandle](injector)
	if _, err := do.Invoke[*providers.PreviewHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.RateLimiterHandle](injector)
	_ = do.MustInvoke[*validation.Validator](injector)

	// Business services
	_ = do.MustInvoke[*service.LogService](injector)
	_ = do.MustInvoke[*service.TagService](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*service.StatsService](injector)

	// Server
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
