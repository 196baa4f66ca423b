// Package providers contains dependency injection providers for the lifelog server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/lifelogapp/lifelog-server/internal/config"
	"github.com/lifelogapp/lifelog-server/internal/logger"
)

// ProvideConfig returns a provider that loads configuration from args,
// the environment and optional config files.
func ProvideConfig(args []string) func(do.Injector) (*config.Config, error) {
	return func(do.Injector) (*config.Config, error) {
		return config.LoadConfig(args)
	}
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Lifelog Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.Path,
		"preview_enabled", cfg.Preview.Enabled,
		"audit_enabled", cfg.Audit.WebhookURL != "",
	)

	return log, nil
}
