package wire

import (
	"context"
	"log/slog"

	"github.com/google/wire"

	"github.com/graphshell/reviewbot/internal/app"
	"github.com/graphshell/reviewbot/internal/config"
	"github.com/graphshell/reviewbot/internal/docs"
	"github.com/graphshell/reviewbot/internal/github"
	"github.com/graphshell/reviewbot/internal/jobs"
	"github.com/graphshell/reviewbot/internal/llm"
	"github.com/graphshell/reviewbot/internal/logger"
	"github.com/graphshell/reviewbot/internal/review"
	"github.com/graphshell/reviewbot/internal/server"
)

// AppSet lists the providers for the serve-mode object graph.
var AppSet = wire.NewSet(
	app.NewApp,
	server.NewServer,
	config.Load,
	jobs.NewDispatcher,
	jobs.NewReviewJob,
	review.NewPromptManager,
	provideOrchestrator,
	provideGitHubClient,
	provideCorpus,
	provideSelector,
	provideGenerator,
	provideMaxWorkers,
	provideLoggerConfig,
	provideSlogLogger,
)

func provideGitHubClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) github.Client {
	return github.NewPATClient(ctx, cfg.GitHub, logger)
}

func provideCorpus(cfg *config.Config) docs.Corpus {
	return docs.NewDirCorpus(cfg.Review.DocsRoot)
}

func provideSelector(cfg *config.Config, corpus docs.Corpus) (*docs.Selector, error) {
	index, err := docs.LoadIndex(cfg.Review.RulesFile)
	if err != nil {
		return nil, err
	}
	return docs.NewSelector(corpus, index)
}

func provideGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (llm.Generator, error) {
	return llm.NewGenerator(ctx, cfg.AI, logger)
}

func provideOrchestrator(
	cfg *config.Config,
	gh github.Client,
	selector *docs.Selector,
	corpus docs.Corpus,
	gen llm.Generator,
	prompts *review.PromptManager,
	logger *slog.Logger,
) *review.Orchestrator {
	return review.NewOrchestrator(cfg, gh, selector, corpus, gen, prompts, nil, logger)
}

func provideMaxWorkers(cfg *config.Config) int {
	return cfg.Server.MaxWorkers
}

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logging
}

// provideSlogLogger defers writer selection to the logger package, which
// already falls back to stderr when the configured output is unusable.
func provideSlogLogger(loggerConfig logger.Config) *slog.Logger {
	return logger.New(loggerConfig, nil)
}
