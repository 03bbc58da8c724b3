package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/graphshell/reviewbot/internal/config"
	"github.com/graphshell/reviewbot/internal/core"
	"github.com/graphshell/reviewbot/internal/docs"
	"github.com/graphshell/reviewbot/internal/github"
	"github.com/graphshell/reviewbot/internal/llm"
)

// CommentSink is the surface a finished review is emitted through. The
// default sink posts a GitHub comment; the CLI's dry-run mode substitutes
// a terminal renderer.
type CommentSink interface {
	PostComment(ctx context.Context, ref core.TargetRef, body string) error
}

// GitHubSink posts reviews as comments through the GitHub client.
type GitHubSink struct {
	GH github.Client
}

func (s GitHubSink) PostComment(ctx context.Context, ref core.TargetRef, body string) error {
	return s.GH.CreateComment(ctx, ref.Number, body)
}

// Orchestrator is the top-level control loop: it enumerates candidate
// targets, consults the staleness oracle, and reviews each stale target.
type Orchestrator struct {
	cfg      *config.Config
	gh       github.Client
	oracle   *Oracle
	selector *docs.Selector
	corpus   docs.Corpus
	gen      llm.Generator
	prompts  *PromptManager
	sink     CommentSink
	logger   *slog.Logger
}

// NewOrchestrator wires the orchestrator. A nil sink defaults to posting
// GitHub comments.
func NewOrchestrator(
	cfg *config.Config,
	gh github.Client,
	selector *docs.Selector,
	corpus docs.Corpus,
	gen llm.Generator,
	prompts *PromptManager,
	sink CommentSink,
	logger *slog.Logger,
) *Orchestrator {
	if sink == nil {
		sink = GitHubSink{GH: gh}
	}
	return &Orchestrator{
		cfg:      cfg,
		gh:       gh,
		oracle:   NewOracle(gh, logger),
		selector: selector,
		corpus:   corpus,
		gen:      gen,
		prompts:  prompts,
		sink:     sink,
		logger:   logger,
	}
}

// WithClient returns a copy of the orchestrator that talks to GitHub through
// gh. Serve mode uses this to review with per-installation credentials while
// sharing the selector, generator, and prompts of the base orchestrator. The
// default posting sink follows the new client; a custom sink is kept.
func (o *Orchestrator) WithClient(gh github.Client) *Orchestrator {
	clone := *o
	clone.gh = gh
	clone.oracle = NewOracle(gh, o.logger)
	if _, ok := o.sink.(GitHubSink); ok {
		clone.sink = GitHubSink{GH: gh}
	}
	return &clone
}

// Run processes one batch: explicit targets when configured, otherwise a
// label scan. It returns the number of reviews posted. A failure on one
// candidate is logged and skipped so one flaky API call cannot kill the
// whole batch; the joined per-candidate errors are returned alongside the
// count.
func (o *Orchestrator) Run(ctx context.Context) (int, error) {
	refs := core.ParseTargetRefs(o.cfg.Review.RawTargets)
	if len(refs) == 0 {
		if o.cfg.Review.Mode != "scan" {
			o.logger.Info("no explicit targets and scan mode disabled, nothing to do")
			return 0, nil
		}
		var err error
		refs, err = o.scan(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to enumerate candidates: %w", err)
		}
	}

	posted := 0
	var failures []error
	for _, ref := range refs {
		reviewed, err := o.ReviewTarget(ctx, ref, o.cfg.Review.Force)
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", ref, err))
			continue
		}
		if reviewed {
			posted++
		}
	}

	o.logger.Info("batch complete", "posted", posted, "failed", len(failures))
	return posted, errors.Join(failures...)
}

// ReviewTarget runs the full pipeline for a single target: staleness check,
// context selection, generation, and posting. It reports whether a review
// was actually posted; an up-to-date target returns false with no error.
func (o *Orchestrator) ReviewTarget(ctx context.Context, ref core.TargetRef, force bool) (bool, error) {
	needed, err := o.oracle.NeedsReview(ctx, ref, force)
	if err != nil {
		o.logger.Error("staleness check failed", "target", ref.String(), "error", err)
		return false, err
	}
	if !needed {
		o.logger.Info("already up-to-date, skipping", "target", ref.String())
		return false, nil
	}
	if err := o.review(ctx, ref); err != nil {
		o.logger.Error("review failed", "target", ref.String(), "error", err)
		return false, err
	}
	return true, nil
}

// scan discovers open PRs and issues carrying any configured review label,
// PRs first, each in API enumeration order.
func (o *Orchestrator) scan(ctx context.Context) ([]core.TargetRef, error) {
	o.logger.Info("scan mode: finding labeled PRs and issues", "labels", o.cfg.Review.Labels)

	refs, err := o.gh.ListOpenPRsByLabels(ctx, o.cfg.Review.Labels)
	if err != nil {
		return nil, err
	}

	seen := make(map[core.TargetRef]struct{}, len(refs))
	for _, ref := range refs {
		seen[ref] = struct{}{}
	}
	for _, label := range o.cfg.Review.Labels {
		issues, err := o.gh.ListOpenIssuesByLabel(ctx, label)
		if err != nil {
			return nil, err
		}
		for _, ref := range issues {
			if _, dup := seen[ref]; dup {
				continue
			}
			seen[ref] = struct{}{}
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// review generates and emits one review comment for a stale target.
func (o *Orchestrator) review(ctx context.Context, ref core.TargetRef) error {
	o.logger.Info("reviewing", "target", ref.String())

	target, err := o.fetchTarget(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to fetch target detail: %w", err)
	}

	diff := ""
	if ref.Kind == core.KindPR {
		diff = o.fetchDiff(ctx, ref)
	}

	docPaths := o.selector.Select(target.SearchText())
	prompt, err := o.buildPrompt(target, docPaths, diff)
	if err != nil {
		return err
	}

	generated, err := o.gen.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("failed to generate review: %w", err)
	}
	if !strings.HasPrefix(generated, core.Marker) {
		generated = core.Marker + "\n" + generated
	}

	if err := o.sink.PostComment(ctx, ref, generated); err != nil {
		return fmt.Errorf("failed to post review comment: %w", err)
	}
	o.logger.Info("posted review", "target", ref.String(), "docs", len(docPaths))
	return nil
}

func (o *Orchestrator) fetchTarget(ctx context.Context, ref core.TargetRef) (*core.ReviewTarget, error) {
	if ref.Kind == core.KindIssue {
		return o.gh.GetIssue(ctx, ref.Number)
	}

	target, err := o.gh.GetPullRequest(ctx, ref.Number)
	if err != nil {
		return nil, err
	}
	files, err := o.gh.ListChangedFiles(ctx, ref.Number)
	if err != nil {
		return nil, err
	}
	target.ChangedFiles = files
	return target, nil
}

// diffLineLimit bounds how much of the unified diff is sent to the model.
const diffLineLimit = 300

// fetchDiff returns the PR's unified diff truncated for prompting. A fetch
// failure degrades to a placeholder so a flaky diff endpoint cannot block
// the review.
func (o *Orchestrator) fetchDiff(ctx context.Context, ref core.TargetRef) string {
	diff, err := o.gh.GetPRDiff(ctx, ref.Number)
	if err != nil {
		o.logger.Warn("diff unavailable, reviewing without it", "target", ref.String(), "error", err)
		return "(diff not available)"
	}
	return truncateDiff(diff, diffLineLimit)
}

// truncateDiff keeps the first maxLines lines of a diff and notes how many
// were dropped.
func truncateDiff(diff string, maxLines int) string {
	lines := strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	if len(lines) <= maxLines {
		return diff
	}
	omitted := len(lines) - maxLines
	return strings.Join(lines[:maxLines], "\n") + fmt.Sprintf("\n\n... (%d more lines truncated)", omitted)
}

func (o *Orchestrator) buildPrompt(target *core.ReviewTarget, docPaths []string, diff string) (string, error) {
	bundle := o.loadDocs(docPaths)
	body := target.Body
	if body == "" {
		body = "(no description)"
	}
	labels := strings.Join(target.Labels, ", ")
	if labels == "" {
		labels = "none"
	}

	if target.Kind == core.KindIssue {
		return o.prompts.Render(IssueReviewPrompt, IssuePromptData{
			Number: target.Number,
			Title:  target.Title,
			Body:   body,
			Labels: labels,
			Docs:   bundle,
			Marker: core.Marker,
		})
	}

	files := "  (none)"
	if len(target.ChangedFiles) > 0 {
		files = "  - " + strings.Join(target.ChangedFiles, "\n  - ")
	}
	return o.prompts.Render(PRReviewPrompt, PRPromptData{
		Number:  target.Number,
		Title:   target.Title,
		Body:    body,
		BaseRef: target.BaseRef,
		HeadRef: target.HeadRef,
		Labels:  labels,
		Files:   files,
		Diff:    diff,
		Docs:    bundle,
		Marker:  core.Marker,
	})
}

// loadDocs assembles the context bundle: each selected document truncated to
// its excerpt, headed by its path.
func (o *Orchestrator) loadDocs(paths []string) string {
	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		content := docs.Excerpt(o.corpus, p, docs.ExcerptLines)
		parts = append(parts, fmt.Sprintf("### %s\n\n%s", p, content))
	}
	return strings.Join(parts, "\n\n---\n\n")
}
