package app

import (
	"github.com/travelingorcas/orcalog/config"
	"github.com/travelingorcas/orcalog/handlers"
	"github.com/travelingorcas/orcalog/middleware/ratelimit"
	"github.com/travelingorcas/orcalog/middleware/sessiongate"
	"github.com/travelingorcas/orcalog/openapi"
	"github.com/travelingorcas/orcalog/server"
	"github.com/travelingorcas/orcalog/services/logging"
	"github.com/travelingorcas/orcalog/session"
)

func registerRoutes(
	srv *server.Server,
	cfg *config.Config,
	logger *logging.Service,
	sessions session.Service,
	auth *handlers.AuthHandler,
	doc *openapi.Document,
) {
	srv.Use(logging.RequestLogger(logger))
	srv.Use(sessiongate.Middleware(sessiongate.Config{
		CookieName: cfg.Auth.CookieName,
		Sessions:   sessions,
		Logger:     logger,
	}))

	// The auth POST endpoints share one store but are limited separately.
	limiterStore := ratelimit.NewMemoryStore()
	requestCodeLimit := ratelimit.Middleware(ratelimit.Config{
		Store:     limiterStore,
		Rate:      cfg.RateLimit.RequestCodeRate,
		Period:    cfg.RateLimit.RequestCodePeriod,
		KeyPrefix: "request-code",
	})
	verifyCodeLimit := ratelimit.Middleware(ratelimit.Config{
		Store:     limiterStore,
		Rate:      cfg.RateLimit.VerifyCodeRate,
		Period:    cfg.RateLimit.VerifyCodePeriod,
		KeyPrefix: "verify-code",
	})

	srv.Post("/api/auth/request-code", auth.RequestCode, requestCodeLimit)
	srv.Post("/api/auth/verify-code", auth.VerifyCode, verifyCodeLimit)
	srv.Post("/api/auth/logout", auth.Logout)
	srv.Get("/api/auth/session", auth.Session)

	srv.Get("/api/openapi.json", doc.JSONHandler())
	srv.Get("/api/openapi.yaml", doc.YAMLHandler())

	srv.Get("/healthz", handlers.Health)
}
