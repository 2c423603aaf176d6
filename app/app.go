package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/travelingorcas/orcalog/config"
	"github.com/travelingorcas/orcalog/database"
	"github.com/travelingorcas/orcalog/handlers"
	"github.com/travelingorcas/orcalog/openapi"
	"github.com/travelingorcas/orcalog/server"
	"github.com/travelingorcas/orcalog/services/authcode"
	"github.com/travelingorcas/orcalog/services/logging"
	"github.com/travelingorcas/orcalog/services/mail"
	"github.com/travelingorcas/orcalog/session"
	"go.uber.org/fx"
)

type App struct {
	fx     *fx.App
	server *server.Server
	logger *logging.Service
}

// New assembles the application. A nil customConfig loads configuration
// from the environment.
func New(customConfig *config.Config) *App {
	app := &App{}

	app.fx = fx.New(
		config.NewProvider(customConfig),
		logging.Module,
		fx.Supply(database.WithModels(
			&authcode.OneTimeCode{},
			&session.Session{},
		)),
		database.Module,
		mail.Module,
		session.Module,
		authcode.Module,
		server.NewProvider(),
		fx.Provide(handlers.NewAuthHandler),
		fx.Provide(openapi.NewDocument),
		fx.Invoke(registerRoutes),
		fx.Invoke(func(srv *server.Server, logger *logging.Service) {
			app.server = srv
			app.logger = logger
		}),
		fx.NopLogger,
	)

	return app
}

func (a *App) Start(ctx context.Context) error {
	return a.fx.Start(ctx)
}

func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.fx.Stop(ctx); err != nil {
		if a.logger != nil {
			a.logger.Error("failed to stop application gracefully")
		} else {
			log.Printf("Failed to stop application gracefully: %v", err)
		}
	}
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *App) Run() {
	if err := a.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	if a.logger != nil {
		a.logger.Info("received shutdown signal, stopping gracefully")
	}

	a.Stop()
}

func (a *App) Server() *server.Server {
	return a.server
}
