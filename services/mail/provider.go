package mail

import (
	"github.com/travelingorcas/orcalog/config"
	"github.com/travelingorcas/orcalog/services/logging"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(ProvideMailService),
)

// ProvideMailService returns a nil service when no SMTP host is configured.
// Code issuance still works without it; dispatch is skipped and logged.
func ProvideMailService(cfg *config.Config, logger *logging.Service) (*Service, error) {
	if cfg.Mail.Host == "" {
		logger.Warn("mail dispatch disabled: no SMTP host configured")
		return nil, nil
	}

	return NewService(&cfg.Mail, logger)
}
