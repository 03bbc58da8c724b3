package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/graphshell/reviewbot/internal/config"
	"github.com/graphshell/reviewbot/internal/core"
	"github.com/graphshell/reviewbot/internal/docs"
	"github.com/graphshell/reviewbot/internal/github"
	"github.com/graphshell/reviewbot/internal/llm"
	"github.com/graphshell/reviewbot/internal/logger"
	"github.com/graphshell/reviewbot/internal/review"
)

var (
	runTargets string
	runForce   bool
	runLabels  string
	runDryRun  bool
)

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	dimColor   = color.New(color.FgHiBlack)
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one review batch and exit",
	Long: `Run one review batch: explicit targets when --targets is given,
otherwise a scan for open PRs and issues carrying a review label.

Examples:
  reviewbot run
  reviewbot run --targets '["pr:42", "issue:7"]'
  reviewbot run --force --labels bot_review
  reviewbot run --dry-run`,
	RunE: runBatch,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	runCmd.Flags().StringVar(&runTargets, "targets", "", `explicit targets as a JSON list, e.g. '["pr:42"]'`)
	runCmd.Flags().BoolVar(&runForce, "force", false, "review even up-to-date targets")
	runCmd.Flags().StringVar(&runLabels, "labels", "", "comma-separated scan labels (overrides REVIEW_LABELS)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "render reviews to the terminal instead of posting")
	rootCmd.AddCommand(runCmd)
}

// terminalSink renders reviews locally instead of posting them.
type terminalSink struct{}

func (terminalSink) PostComment(_ context.Context, ref core.TargetRef, body string) error {
	titleColor.Printf("\n=== review for %s ===\n", ref.String())
	rendered, err := glamour.Render(body, "dark")
	if err != nil {
		// Fall back to the raw markdown rather than losing the review.
		fmt.Println(body)
		return nil
	}
	fmt.Print(rendered)
	dimColor.Println("(dry run, nothing posted)")
	return nil
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if runTargets != "" {
		cfg.Review.RawTargets = runTargets
		cfg.Review.Mode = "explicit"
	}
	if runForce {
		cfg.Review.Force = true
	}
	if runLabels != "" {
		cfg.Review.Labels = config.ParseLabels(runLabels)
	}

	log := logger.New(cfg.Logging, nil)

	gh := github.NewPATClient(ctx, cfg.GitHub, log)
	corpus := docs.NewDirCorpus(cfg.Review.DocsRoot)
	index, err := docs.LoadIndex(cfg.Review.RulesFile)
	if err != nil {
		return fmt.Errorf("failed to load context rules: %w", err)
	}
	selector, err := docs.NewSelector(corpus, index)
	if err != nil {
		return fmt.Errorf("failed to compile context rules: %w", err)
	}
	gen, err := llm.NewGenerator(ctx, cfg.AI, log)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}
	prompts, err := review.NewPromptManager()
	if err != nil {
		return fmt.Errorf("failed to load prompts: %w", err)
	}

	var sink review.CommentSink
	if runDryRun {
		sink = terminalSink{}
	}
	orch := review.NewOrchestrator(cfg, gh, selector, corpus, gen, prompts, sink, log)

	posted, err := orch.Run(ctx)
	if err != nil {
		// Per-candidate failures are already logged; surface them after
		// reporting what did get through.
		fmt.Printf("Done. %d review(s) posted.\n", posted)
		return fmt.Errorf("batch finished with failures: %s", strings.TrimSpace(err.Error()))
	}

	fmt.Printf("Done. %d review(s) posted.\n", posted)
	return nil
}
