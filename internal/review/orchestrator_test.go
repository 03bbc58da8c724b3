package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphshell/reviewbot/internal/config"
	"github.com/graphshell/reviewbot/internal/core"
	"github.com/graphshell/reviewbot/internal/docs"
	"github.com/graphshell/reviewbot/internal/llm"
)

// fakeGitHub is a stateful in-memory stand-in for the GitHub API: comments
// posted through it are visible to subsequent history fetches, which is what
// the idempotence contract depends on.
type fakeGitHub struct {
	prs           map[int]*core.ReviewTarget
	issues        map[int]*core.ReviewTarget
	comments      map[int][]core.Comment
	files         map[int][]string
	commits       map[int][]time.Time
	diffs         map[int]string
	labeledPRs    []core.TargetRef
	labeledIssues []core.TargetRef

	filesErr error
	diffErr  error
	now      time.Time
	posted   int
}

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{
		prs:      make(map[int]*core.ReviewTarget),
		issues:   make(map[int]*core.ReviewTarget),
		comments: make(map[int][]core.Comment),
		files:    make(map[int][]string),
		commits:  make(map[int][]time.Time),
		diffs:    make(map[int]string),
		now:      time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
	}
}

func (f *fakeGitHub) GetPullRequest(_ context.Context, number int) (*core.ReviewTarget, error) {
	pr, ok := f.prs[number]
	if !ok {
		return nil, fmt.Errorf("no such PR %d", number)
	}
	copied := *pr
	return &copied, nil
}

func (f *fakeGitHub) GetIssue(_ context.Context, number int) (*core.ReviewTarget, error) {
	issue, ok := f.issues[number]
	if !ok {
		return nil, fmt.Errorf("no such issue %d", number)
	}
	copied := *issue
	return &copied, nil
}

func (f *fakeGitHub) ListComments(_ context.Context, number int) ([]core.Comment, error) {
	return f.comments[number], nil
}

func (f *fakeGitHub) ListChangedFiles(_ context.Context, number int) ([]string, error) {
	if f.filesErr != nil {
		return nil, f.filesErr
	}
	return f.files[number], nil
}

func (f *fakeGitHub) GetPRDiff(_ context.Context, number int) (string, error) {
	if f.diffErr != nil {
		return "", f.diffErr
	}
	return f.diffs[number], nil
}

func (f *fakeGitHub) ListCommitTimes(_ context.Context, number int) ([]time.Time, error) {
	return f.commits[number], nil
}

func (f *fakeGitHub) ListOpenPRsByLabels(context.Context, []string) ([]core.TargetRef, error) {
	return f.labeledPRs, nil
}

func (f *fakeGitHub) ListOpenIssuesByLabel(context.Context, string) ([]core.TargetRef, error) {
	return f.labeledIssues, nil
}

func (f *fakeGitHub) CreateComment(_ context.Context, number int, body string) error {
	f.posted++
	f.comments[number] = append(f.comments[number], core.Comment{Body: body, UpdatedAt: f.now})
	f.now = f.now.Add(time.Minute)
	return nil
}

// fakeGenerator returns canned review text.
type fakeGenerator struct {
	response string
	err      error
}

func (g fakeGenerator) Generate(context.Context, string) (string, error) {
	return g.response, g.err
}

func testConfig(rawTargets string) *config.Config {
	return &config.Config{
		GitHub: config.GitHubConfig{Token: "t", Repository: "graphshell/graphshell"},
		Review: config.ReviewConfig{
			Mode:       "scan",
			RawTargets: rawTargets,
			Labels:     []string{"bot_review", "review"},
		},
	}
}

func newTestOrchestrator(t *testing.T, cfg *config.Config, gh *fakeGitHub, gen fakeGenerator) *Orchestrator {
	t.Helper()
	return newTestOrchestratorWithGen(t, cfg, gh, gen)
}

func newTestOrchestratorWithGen(t *testing.T, cfg *config.Config, gh *fakeGitHub, gen llm.Generator) *Orchestrator {
	t.Helper()

	index := &docs.Index{
		AlwaysInclude: []string{"TERMINOLOGY.md"},
		Rules: []docs.Rule{
			{Keywords: []string{"physics"}, Doc: "physics_plan.md"},
		},
	}
	corpus := fakeCorpus{
		"TERMINOLOGY.md":  "canonical terms",
		"physics_plan.md": "physics plan",
	}
	selector, err := docs.NewSelector(corpus, index)
	require.NoError(t, err)

	prompts, err := NewPromptManager()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewOrchestrator(cfg, gh, selector, corpus, gen, prompts, nil, logger)
}

type fakeCorpus map[string]string

func (c fakeCorpus) Exists(path string) bool {
	_, ok := c[path]
	return ok
}

func (c fakeCorpus) ReadText(path string) string {
	if content, ok := c[path]; ok {
		return content
	}
	return "(file not found: " + path + ")"
}

func TestOrchestratorIdempotence(t *testing.T) {
	gh := newFakeGitHub()
	gh.prs[1] = &core.ReviewTarget{Kind: core.KindPR, Number: 1, Title: "Physics reheat"}
	gh.files[1] = []string{"src/physics.rs"}
	gh.commits[1] = []time.Time{time.Date(2026, 8, 19, 10, 0, 0, 0, time.UTC)}
	gh.issues[7] = &core.ReviewTarget{Kind: core.KindIssue, Number: 7, Title: "Docs gap"}

	cfg := testConfig(`["pr:1", "issue:7"]`)
	orch := newTestOrchestrator(t, cfg, gh, fakeGenerator{response: "review body"})

	posted, err := orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, posted)
	assert.Equal(t, 2, gh.posted)

	// No target changed since the first pass: the second run posts nothing.
	posted, err = orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, posted)
	assert.Equal(t, 2, gh.posted)
}

func TestOrchestratorRereviewsAfterNewCommit(t *testing.T) {
	gh := newFakeGitHub()
	gh.prs[1] = &core.ReviewTarget{Kind: core.KindPR, Number: 1, Title: "Physics reheat"}
	gh.files[1] = []string{"src/physics.rs"}
	gh.commits[1] = []time.Time{time.Date(2026, 8, 19, 10, 0, 0, 0, time.UTC)}

	cfg := testConfig(`["pr:1"]`)
	orch := newTestOrchestrator(t, cfg, gh, fakeGenerator{response: "review body"})

	posted, err := orch.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, posted)

	// A commit newer than the posted review makes the PR stale again.
	gh.commits[1] = append(gh.commits[1], gh.now.Add(time.Hour))

	posted, err = orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, posted)
}

func TestOrchestratorMarkerPrefix(t *testing.T) {
	gh := newFakeGitHub()
	gh.prs[1] = &core.ReviewTarget{Kind: core.KindPR, Number: 1, Title: "Change"}
	gh.files[1] = []string{"a.go"}

	t.Run("Marker prepended when absent", func(t *testing.T) {
		ghCopy := *gh
		ghCopy.comments = map[int][]core.Comment{}
		cfg := testConfig(`["pr:1"]`)
		orch := newTestOrchestrator(t, cfg, &ghCopy, fakeGenerator{response: "plain review"})

		_, err := orch.Run(context.Background())
		require.NoError(t, err)
		require.Len(t, ghCopy.comments[1], 1)
		assert.True(t, strings.HasPrefix(ghCopy.comments[1][0].Body, core.Marker+"\n"))
	})

	t.Run("Marker not doubled when present", func(t *testing.T) {
		ghCopy := *gh
		ghCopy.comments = map[int][]core.Comment{}
		cfg := testConfig(`["pr:1"]`)
		orch := newTestOrchestrator(t, cfg, &ghCopy, fakeGenerator{response: core.Marker + "\nalready tagged"})

		_, err := orch.Run(context.Background())
		require.NoError(t, err)
		require.Len(t, ghCopy.comments[1], 1)
		assert.Equal(t, core.Marker+"\nalready tagged", ghCopy.comments[1][0].Body)
	})
}

func TestOrchestratorSkipsPRWithoutChanges(t *testing.T) {
	gh := newFakeGitHub()
	gh.prs[1] = &core.ReviewTarget{Kind: core.KindPR, Number: 1, Title: "Plan only"}
	// No changed files registered.

	cfg := testConfig(`["pr:1"]`)
	orch := newTestOrchestrator(t, cfg, gh, fakeGenerator{response: "review"})

	posted, err := orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, posted)
	assert.Equal(t, 0, gh.posted)
}

func TestOrchestratorIsolatesCandidateFailures(t *testing.T) {
	gh := newFakeGitHub()
	gh.prs[1] = &core.ReviewTarget{Kind: core.KindPR, Number: 1, Title: "Broken fetch"}
	gh.filesErr = errors.New("boom")
	gh.issues[7] = &core.ReviewTarget{Kind: core.KindIssue, Number: 7, Title: "Fine"}

	cfg := testConfig(`["pr:1", "issue:7"]`)
	orch := newTestOrchestrator(t, cfg, gh, fakeGenerator{response: "review"})

	posted, err := orch.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, posted, "the healthy candidate still gets reviewed")
	assert.Len(t, gh.comments[7], 1)
}

func TestOrchestratorGenerationFailure(t *testing.T) {
	gh := newFakeGitHub()
	gh.issues[7] = &core.ReviewTarget{Kind: core.KindIssue, Number: 7, Title: "Issue"}

	cfg := testConfig(`["issue:7"]`)
	orch := newTestOrchestrator(t, cfg, gh, fakeGenerator{err: errors.New("model offline")})

	posted, err := orch.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, posted)
	assert.Equal(t, 0, gh.posted)
}

// recordingGenerator captures every prompt it is asked to complete.
type recordingGenerator struct {
	prompts []string
}

func (g *recordingGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return "review body", nil
}

func TestOrchestratorPromptCarriesDiff(t *testing.T) {
	gh := newFakeGitHub()
	gh.prs[1] = &core.ReviewTarget{Kind: core.KindPR, Number: 1, Title: "Change"}
	gh.files[1] = []string{"src/graph.rs"}
	gh.diffs[1] = "diff --git a/src/graph.rs b/src/graph.rs\n+fn new_node() {}"

	cfg := testConfig(`["pr:1"]`)
	gen := &recordingGenerator{}
	orch := newTestOrchestratorWithGen(t, cfg, gh, gen)

	_, err := orch.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "+fn new_node() {}")
}

func TestOrchestratorPromptDiffUnavailable(t *testing.T) {
	gh := newFakeGitHub()
	gh.prs[1] = &core.ReviewTarget{Kind: core.KindPR, Number: 1, Title: "Change"}
	gh.files[1] = []string{"src/graph.rs"}
	gh.diffErr = errors.New("406 not acceptable")

	cfg := testConfig(`["pr:1"]`)
	gen := &recordingGenerator{}
	orch := newTestOrchestratorWithGen(t, cfg, gh, gen)

	// A failed diff fetch must not block the review.
	posted, err := orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, posted)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "(diff not available)")
}

func TestTruncateDiff(t *testing.T) {
	longDiff := strings.Repeat("context line\n", 400)

	t.Run("Short diff unchanged", func(t *testing.T) {
		assert.Equal(t, "a\nb\n", truncateDiff("a\nb\n", 300))
	})

	t.Run("Long diff cut at the limit", func(t *testing.T) {
		got := truncateDiff(longDiff, 300)
		assert.Equal(t, 300, strings.Count(got, "context line"))
		assert.Contains(t, got, "... (100 more lines truncated)")
	})
}

func TestOrchestratorWithClient(t *testing.T) {
	base := newFakeGitHub()
	replacement := newFakeGitHub()
	replacement.prs[1] = &core.ReviewTarget{Kind: core.KindPR, Number: 1, Title: "Change"}
	replacement.files[1] = []string{"a.go"}

	cfg := testConfig(`["pr:1"]`)
	orch := newTestOrchestrator(t, cfg, base, fakeGenerator{response: "review"}).WithClient(replacement)

	posted, err := orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, posted)
	assert.Equal(t, 1, replacement.posted, "the swapped-in client handles fetches and posting")
	assert.Equal(t, 0, base.posted)
}

func TestOrchestratorScanMode(t *testing.T) {
	gh := newFakeGitHub()
	gh.prs[3] = &core.ReviewTarget{Kind: core.KindPR, Number: 3, Title: "Labeled PR"}
	gh.files[3] = []string{"src/graph.rs"}
	gh.issues[9] = &core.ReviewTarget{Kind: core.KindIssue, Number: 9, Title: "Labeled issue"}
	gh.labeledPRs = []core.TargetRef{{Kind: core.KindPR, Number: 3}}
	gh.labeledIssues = []core.TargetRef{{Kind: core.KindIssue, Number: 9}}

	cfg := testConfig("[]")
	orch := newTestOrchestrator(t, cfg, gh, fakeGenerator{response: "review"})

	posted, err := orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, posted)
}

func TestOrchestratorExplicitModeWithoutTargetsIsNoop(t *testing.T) {
	gh := newFakeGitHub()
	cfg := testConfig("not valid json")
	cfg.Review.Mode = "explicit"

	orch := newTestOrchestrator(t, cfg, gh, fakeGenerator{response: "review"})

	posted, err := orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, posted)
}
