// Package review implements the staleness decision engine and the
// orchestration loop that turns stale targets into posted review comments.
package review

import (
	"context"
	"log/slog"
	"time"

	"github.com/graphshell/reviewbot/internal/core"
	"github.com/graphshell/reviewbot/internal/github"
)

// NeedsPRReview decides whether a pull request warrants a fresh review.
// Rules are evaluated in order and the first match wins:
//
//  1. force bypasses every other check.
//  2. A PR with no changed files has nothing to review, even if it has
//     never been reviewed before.
//  3. A PR with no prior marker comment has never been reviewed.
//  4. Without a commit timestamp there is no reliable signal that new work
//     occurred, so no review. Otherwise a review is needed exactly when the
//     latest commit is strictly newer than the last review.
func NeedsPRReview(changedFiles []string, comments []core.Comment, commitTimes []time.Time, force bool) bool {
	if force {
		return true
	}
	if len(changedFiles) == 0 {
		return false
	}

	lastReview, found := core.LastBotComment(comments)
	if !found {
		return true
	}

	latest, ok := latestTime(commitTimes)
	if !ok {
		return false
	}
	return latest.After(lastReview.UpdatedAt)
}

// NeedsIssueReview decides whether an issue warrants a review. Issues have no
// commit timeline: they are reviewed at most once unless forced.
func NeedsIssueReview(comments []core.Comment, force bool) bool {
	if force {
		return true
	}
	_, found := core.LastBotComment(comments)
	return !found
}

func latestTime(times []time.Time) (time.Time, bool) {
	var latest time.Time
	for _, t := range times {
		if t.After(latest) {
			latest = t
		}
	}
	return latest, !latest.IsZero()
}

// Oracle answers "does this target need a fresh review" by fetching the
// target's comment and commit history per invocation. It holds no state of
// its own; the marker comment on the target is the only idempotence record.
type Oracle struct {
	gh     github.Client
	logger *slog.Logger
}

// NewOracle returns a staleness oracle backed by the given client.
func NewOracle(gh github.Client, logger *slog.Logger) *Oracle {
	return &Oracle{gh: gh, logger: logger}
}

// NeedsReview fetches only as much history as the rules require: commit
// timestamps are looked up only when a prior review exists to compare
// against.
func (o *Oracle) NeedsReview(ctx context.Context, ref core.TargetRef, force bool) (bool, error) {
	if force {
		return true, nil
	}

	if ref.Kind == core.KindIssue {
		comments, err := o.gh.ListComments(ctx, ref.Number)
		if err != nil {
			return false, err
		}
		return NeedsIssueReview(comments, false), nil
	}

	files, err := o.gh.ListChangedFiles(ctx, ref.Number)
	if err != nil {
		return false, err
	}
	if len(files) == 0 {
		o.logger.Info("no file changes, skipping", "target", ref.String())
		return false, nil
	}

	comments, err := o.gh.ListComments(ctx, ref.Number)
	if err != nil {
		return false, err
	}
	if _, found := core.LastBotComment(comments); !found {
		return true, nil
	}

	commitTimes, err := o.gh.ListCommitTimes(ctx, ref.Number)
	if err != nil {
		return false, err
	}
	return NeedsPRReview(files, comments, commitTimes, false), nil
}
