// Package app ties the serve-mode components together and manages their
// lifecycle.
package app

import (
	"context"
	"log/slog"

	"github.com/graphshell/reviewbot/internal/config"
	"github.com/graphshell/reviewbot/internal/core"
	"github.com/graphshell/reviewbot/internal/server"
)

// App holds the main serve-mode components.
type App struct {
	ctx        context.Context
	cfg        *config.Config
	server     *server.Server
	dispatcher core.JobDispatcher
	logger     *slog.Logger
}

// NewApp assembles the application from its wired components.
func NewApp(ctx context.Context, cfg *config.Config, srv *server.Server, dispatcher core.JobDispatcher, logger *slog.Logger) *App {
	return &App{
		ctx:        ctx,
		cfg:        cfg,
		server:     srv,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Start runs the HTTP server and blocks until shutdown.
func (a *App) Start() error {
	a.logger.Info("starting reviewbot",
		"server_port", a.cfg.Server.Port,
		"max_workers", a.cfg.Server.MaxWorkers)

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the application cleanly: the server first so no new work
// arrives, then the dispatcher so in-flight reviews finish.
func (a *App) Stop() error {
	a.logger.Info("shutting down reviewbot services")

	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
	}

	a.dispatcher.Stop()

	if serverErr != nil {
		a.logger.Error("reviewbot stopped with errors", "error", serverErr)
		return serverErr
	}

	a.logger.Info("reviewbot stopped successfully")
	return nil
}
