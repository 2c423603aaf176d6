package session

import (
	"github.com/travelingorcas/orcalog/config"
	"github.com/travelingorcas/orcalog/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Options(
	fx.Provide(ProvideSessionService),
)

func ProvideSessionService(cfg *config.Config, db *gorm.DB, logger *logging.Service) Service {
	return NewService(cfg, db, logger)
}
