package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/graphshell/reviewbot/internal/config"
	"github.com/graphshell/reviewbot/internal/core"
	"github.com/graphshell/reviewbot/internal/github"
	"github.com/graphshell/reviewbot/internal/review"
)

// clientFactory builds a GitHub client authenticated for one App
// installation.
type clientFactory func(ctx context.Context, installationID int64) (github.Client, error)

// ReviewJob runs the review pipeline for a single requested target. Requests
// carrying an installation ID are served through a client authenticated as
// that GitHub App installation; the rest fall back to the base orchestrator's
// PAT client.
type ReviewJob struct {
	cfg           *config.Config
	orch          *review.Orchestrator
	installClient clientFactory
	logger        *slog.Logger
}

// NewReviewJob creates a ReviewJob backed by the given orchestrator.
func NewReviewJob(cfg *config.Config, orch *review.Orchestrator, logger *slog.Logger) core.Job {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if orch == nil {
		panic("orchestrator cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ReviewJob{
		cfg:  cfg,
		orch: orch,
		installClient: func(ctx context.Context, installationID int64) (github.Client, error) {
			return github.NewInstallationClient(ctx, cfg.GitHub, installationID, logger)
		},
		logger: logger,
	}
}

// Run executes the review pipeline for the requested target.
func (j *ReviewJob) Run(ctx context.Context, req *core.ReviewRequest) error {
	if err := validateRequest(ctx, req); err != nil {
		j.logger.Error("input validation failed", "error", err)
		return fmt.Errorf("input validation failed: %w", err)
	}

	j.logger.Info("starting review job", "target", req.Ref.String(), "force", req.Force)

	orch := j.orch
	if req.InstallationID > 0 {
		gh, err := j.installClient(ctx, req.InstallationID)
		if err != nil {
			j.logger.Error("failed to create installation client", "installation_id", req.InstallationID, "error", err)
			return fmt.Errorf("failed to create installation client: %w", err)
		}
		orch = j.orch.WithClient(gh)
	}

	posted, err := orch.ReviewTarget(ctx, req.Ref, req.Force)
	if err != nil {
		return fmt.Errorf("review pipeline failed: %w", err)
	}
	if posted {
		j.logger.Info("review job posted a comment", "target", req.Ref.String())
	} else {
		j.logger.Info("review job found target up-to-date", "target", req.Ref.String())
	}
	return nil
}
