package providers

import (
	"github.com/samber/do/v2"

	"github.com/lifelogapp/lifelog-server/internal/audit"
	"github.com/lifelogapp/lifelog-server/internal/config"
	"github.com/lifelogapp/lifelog-server/internal/logger"
	"github.com/lifelogapp/lifelog-server/internal/service"
	"github.com/lifelogapp/lifelog-server/internal/validation"
)

// AuditHandle wraps the audit notifier with shutdown capability.
type AuditHandle struct {
	*audit.Notifier
}

// Shutdown implements do.Shutdownable. Queued events are flushed first.
func (h *AuditHandle) Shutdown() error {
	ctx, cancel := shutdownContext()
	defer cancel()
	return h.Notifier.Shutdown(ctx)
}

// ProvideAuditor provides the audit webhook notifier.
func ProvideAuditor(i do.Injector) (*AuditHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	n := audit.New(audit.Config{WebhookURL: cfg.Audit.WebhookURL}, log.WithComponent("audit").Logger)
	if n.Enabled() {
		log.Info("Audit webhook enabled")
	}
	return &AuditHandle{Notifier: n}, nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideLogService provides the log service.
func ProvideLogService(i do.Injector) (*service.LogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	auditHandle := do.MustInvoke[*AuditHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLogService(storeHandle.Store, validator, log.Logger,
		service.WithAuditor(auditHandle.Notifier)), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	auditHandle := do.MustInvoke[*AuditHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, validator, log.Logger,
		service.WithAuditor(auditHandle.Notifier)), nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(storeHandle.Store, log.Logger), nil
}

// ProvideStatsService provides the stats service.
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewStatsService(storeHandle.Store, log.Logger), nil
}
