package authcode

import (
	"github.com/travelingorcas/orcalog/config"
	"github.com/travelingorcas/orcalog/services/logging"
	"github.com/travelingorcas/orcalog/services/mail"
	"github.com/travelingorcas/orcalog/session"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Options(
	fx.Provide(ProvideService),
)

func ProvideService(cfg *config.Config, db *gorm.DB, sessions session.Service, logger *logging.Service, mailSvc *mail.Service) *Service {
	svc := NewService(cfg, db, sessions, logger)
	if mailSvc != nil {
		svc.SetMailService(mailSvc)
	}
	return svc
}
