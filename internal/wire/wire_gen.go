// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"
	"fmt"

	"github.com/graphshell/reviewbot/internal/app"
	"github.com/graphshell/reviewbot/internal/config"
	"github.com/graphshell/reviewbot/internal/jobs"
	"github.com/graphshell/reviewbot/internal/review"
	"github.com/graphshell/reviewbot/internal/server"
)

// InitializeApp creates and wires all serve-mode dependencies.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	loggerConfig := provideLoggerConfig(cfg)
	slogLogger := provideSlogLogger(loggerConfig)

	ghClient := provideGitHubClient(ctx, cfg, slogLogger)
	corpus := provideCorpus(cfg)

	selector, err := provideSelector(cfg, corpus)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load context rules: %w", err)
	}

	generator, err := provideGenerator(ctx, cfg, slogLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create generator: %w", err)
	}

	promptMgr, err := review.NewPromptManager()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prompt manager: %w", err)
	}

	orchestrator := provideOrchestrator(cfg, ghClient, selector, corpus, generator, promptMgr, slogLogger)
	reviewJob := jobs.NewReviewJob(cfg, orchestrator, slogLogger)
	dispatcher := jobs.NewDispatcher(reviewJob, provideMaxWorkers(cfg), slogLogger)
	srv := server.NewServer(ctx, cfg, dispatcher, slogLogger)

	application := app.NewApp(ctx, cfg, srv, dispatcher, slogLogger)

	// Shutdown of the server and dispatcher is owned by app.Stop.
	cleanup := func() {}
	return application, cleanup, nil
}
