// Package github provides a focused client for the GitHub operations the
// review orchestrator needs: fetching PR/issue detail, comment and commit
// history, label scans, and posting comments.
package github

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/go-github/v73/github"

	"github.com/graphshell/reviewbot/internal/core"
)

// Client defines the source-tracking operations consumed by the orchestrator
// and the staleness oracle. All list operations follow pagination to
// exhaustion and return empty slices on empty or missing pages.
type Client interface {
	GetPullRequest(ctx context.Context, number int) (*core.ReviewTarget, error)
	GetIssue(ctx context.Context, number int) (*core.ReviewTarget, error)
	ListComments(ctx context.Context, number int) ([]core.Comment, error)
	ListChangedFiles(ctx context.Context, number int) ([]string, error)
	GetPRDiff(ctx context.Context, number int) (string, error)
	ListCommitTimes(ctx context.Context, number int) ([]time.Time, error)
	ListOpenPRsByLabels(ctx context.Context, labels []string) ([]core.TargetRef, error)
	ListOpenIssuesByLabel(ctx context.Context, label string) ([]core.TargetRef, error)
	CreateComment(ctx context.Context, number int, body string) error
}

type ghClient struct {
	client *github.Client
	owner  string
	repo   string
	logger *slog.Logger
}

// NewClient wraps the official go-github client for a single repository.
func NewClient(client *github.Client, owner, repo string, logger *slog.Logger) Client {
	return &ghClient{client: client, owner: owner, repo: repo, logger: logger}
}

// GetPullRequest retrieves a pull request and shapes it into a ReviewTarget.
// Changed files and commit times are fetched separately on demand.
func (g *ghClient) GetPullRequest(ctx context.Context, number int) (*core.ReviewTarget, error) {
	pr, _, err := g.client.PullRequests.Get(ctx, g.owner, g.repo, number)
	if err != nil {
		g.logger.Error("failed to get pull request", "pr", number, "error", err)
		return nil, err
	}

	target := &core.ReviewTarget{
		Kind:    core.KindPR,
		Number:  number,
		Title:   pr.GetTitle(),
		Body:    pr.GetBody(),
		BaseRef: pr.GetBase().GetRef(),
		HeadRef: pr.GetHead().GetRef(),
	}
	for _, l := range pr.Labels {
		target.Labels = append(target.Labels, l.GetName())
	}
	return target, nil
}

// GetIssue retrieves an issue and shapes it into a ReviewTarget.
func (g *ghClient) GetIssue(ctx context.Context, number int) (*core.ReviewTarget, error) {
	issue, _, err := g.client.Issues.Get(ctx, g.owner, g.repo, number)
	if err != nil {
		g.logger.Error("failed to get issue", "issue", number, "error", err)
		return nil, err
	}

	target := &core.ReviewTarget{
		Kind:   core.KindIssue,
		Number: number,
		Title:  issue.GetTitle(),
		Body:   issue.GetBody(),
	}
	for _, l := range issue.Labels {
		target.Labels = append(target.Labels, l.GetName())
	}
	return target, nil
}

// ListComments returns all comments on a PR or issue. PR conversation
// comments live on the issues endpoint, so one method covers both kinds.
func (g *ghClient) ListComments(ctx context.Context, number int) ([]core.Comment, error) {
	comments := []core.Comment{}
	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: 100}}

	for {
		page, resp, err := g.client.Issues.ListComments(ctx, g.owner, g.repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list comments", "number", number, "error", err)
			return nil, err
		}
		for _, c := range page {
			comments = append(comments, core.Comment{
				Body:      c.GetBody(),
				UpdatedAt: c.GetUpdatedAt().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return comments, nil
}

// ListChangedFiles returns the filenames modified in a pull request.
func (g *ghClient) ListChangedFiles(ctx context.Context, number int) ([]string, error) {
	files := []string{}
	opts := &github.ListOptions{PerPage: 100}

	for {
		page, resp, err := g.client.PullRequests.ListFiles(ctx, g.owner, g.repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list changed files", "pr", number, "error", err)
			return nil, err
		}
		for _, f := range page {
			files = append(files, f.GetFilename())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return files, nil
}

// GetPRDiff returns the unified diff of a pull request.
func (g *ghClient) GetPRDiff(ctx context.Context, number int) (string, error) {
	diff, _, err := g.client.PullRequests.GetRaw(ctx, g.owner, g.repo, number, github.RawOptions{Type: github.Diff})
	if err != nil {
		g.logger.Error("failed to fetch diff", "pr", number, "error", err)
		return "", err
	}
	return diff, nil
}

// ListCommitTimes returns one timestamp per commit on a pull request,
// preferring the committer date and falling back to the author date.
func (g *ghClient) ListCommitTimes(ctx context.Context, number int) ([]time.Time, error) {
	times := []time.Time{}
	opts := &github.ListOptions{PerPage: 100}

	for {
		page, resp, err := g.client.PullRequests.ListCommits(ctx, g.owner, g.repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list commits", "pr", number, "error", err)
			return nil, err
		}
		for _, c := range page {
			commit := c.GetCommit()
			if commit == nil {
				continue
			}
			ts := commit.GetCommitter().GetDate().Time
			if ts.IsZero() {
				ts = commit.GetAuthor().GetDate().Time
			}
			if !ts.IsZero() {
				times = append(times, ts)
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return times, nil
}

// ListOpenPRsByLabels returns open pull requests carrying any of the given
// labels, in API enumeration order, deduplicated.
func (g *ghClient) ListOpenPRsByLabels(ctx context.Context, labels []string) ([]core.TargetRef, error) {
	wanted := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		wanted[strings.ToLower(l)] = struct{}{}
	}

	refs := []core.TargetRef{}
	seen := make(map[int]struct{})
	opts := &github.PullRequestListOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		page, resp, err := g.client.PullRequests.List(ctx, g.owner, g.repo, opts)
		if err != nil {
			g.logger.Error("failed to list open pull requests", "error", err)
			return nil, err
		}
		for _, pr := range page {
			if !hasAnyLabel(pr.Labels, wanted) {
				continue
			}
			if _, dup := seen[pr.GetNumber()]; dup {
				continue
			}
			seen[pr.GetNumber()] = struct{}{}
			refs = append(refs, core.TargetRef{Kind: core.KindPR, Number: pr.GetNumber()})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return refs, nil
}

// ListOpenIssuesByLabel returns open issues carrying the given label. The
// issues endpoint also returns pull requests; those are excluded here.
func (g *ghClient) ListOpenIssuesByLabel(ctx context.Context, label string) ([]core.TargetRef, error) {
	refs := []core.TargetRef{}
	opts := &github.IssueListByRepoOptions{
		State:       "open",
		Labels:      []string{label},
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		page, resp, err := g.client.Issues.ListByRepo(ctx, g.owner, g.repo, opts)
		if err != nil {
			g.logger.Error("failed to list open issues", "label", label, "error", err)
			return nil, err
		}
		for _, issue := range page {
			if issue.IsPullRequest() {
				continue
			}
			refs = append(refs, core.TargetRef{Kind: core.KindIssue, Number: issue.GetNumber()})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}
	return refs, nil
}

// CreateComment posts a new comment on a PR or issue.
func (g *ghClient) CreateComment(ctx context.Context, number int, body string) error {
	comment := &github.IssueComment{Body: &body}
	_, _, err := g.client.Issues.CreateComment(ctx, g.owner, g.repo, number, comment)
	if err != nil {
		g.logger.Error("failed to create comment", "number", number, "error", err)
	}
	return err
}

func hasAnyLabel(labels []*github.Label, wanted map[string]struct{}) bool {
	for _, l := range labels {
		if _, ok := wanted[strings.ToLower(l.GetName())]; ok {
			return true
		}
	}
	return false
}
