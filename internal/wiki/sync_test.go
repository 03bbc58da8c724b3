package wiki

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, root string, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// docsTree builds a small source tree:
//
//	design_docs/
//	  TERMINOLOGY.md
//	  notes.txt
//	  strategy/
//	    physics_plan.md
//	    research/
//	      deep_dive.md
func docsTree(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "design_docs")
	writeDoc(t, root, "TERMINOLOGY.md", "# Terms")
	writeDoc(t, root, "notes.txt", "not a page")
	writeDoc(t, root, "strategy/physics_plan.md", "# Physics")
	writeDoc(t, root, "strategy/research/deep_dive.md", "# Deep dive")
	return root
}

func TestBuildSidebar(t *testing.T) {
	root := docsTree(t)

	sidebar, err := BuildSidebar(root, nil)
	require.NoError(t, err)

	want := `- [Home](Home)
- **design_docs**
  - **strategy**
    - **research**
      - [deep_dive](design_docs/strategy/research/deep_dive)
    - [physics_plan](design_docs/strategy/physics_plan)
  - [TERMINOLOGY](design_docs/TERMINOLOGY)
`
	assert.Equal(t, want, sidebar)
}

func TestBuildHome(t *testing.T) {
	root := docsTree(t)

	home, err := BuildHome(root, nil)
	require.NoError(t, err)

	assert.Contains(t, home, "# Graphshell Design Docs")
	assert.Contains(t, home, "- [TERMINOLOGY](design_docs/TERMINOLOGY)")
	assert.Contains(t, home, "- **strategy**")
	assert.Contains(t, home, "_Last sync source: `design_docs/`_")
	assert.NotContains(t, home, "notes.txt")
}

func TestBuildHomeNoDocs(t *testing.T) {
	root := filepath.Join(t.TempDir(), "design_docs")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "strategy"), 0o755))

	home, err := BuildHome(root, nil)
	require.NoError(t, err)
	assert.Contains(t, home, "- (none)")
}

func TestSync(t *testing.T) {
	root := docsTree(t)
	wikiDir := t.TempDir()

	// Pre-existing wiki content that must be wiped, plus a .git dir that
	// must survive.
	require.NoError(t, os.MkdirAll(filepath.Join(wikiDir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(wikiDir, "stale.md"), []byte("old"), 0o644))

	syncer := NewSyncer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, syncer.Sync(Options{SourceDir: root, WikiDir: wikiDir}))

	assert.NoFileExists(t, filepath.Join(wikiDir, "stale.md"))
	assert.DirExists(t, filepath.Join(wikiDir, ".git"))
	assert.FileExists(t, filepath.Join(wikiDir, "design_docs", "TERMINOLOGY.md"))
	assert.FileExists(t, filepath.Join(wikiDir, "design_docs", "strategy", "research", "deep_dive.md"))
	assert.FileExists(t, filepath.Join(wikiDir, "Home.md"))
	assert.FileExists(t, filepath.Join(wikiDir, "_Sidebar.md"))
}

func TestSyncExcludeGlobs(t *testing.T) {
	root := docsTree(t)
	writeDoc(t, root, "drafts/wip.md", "work in progress")
	wikiDir := t.TempDir()

	syncer := NewSyncer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, syncer.Sync(Options{
		SourceDir: root,
		WikiDir:   wikiDir,
		Exclude:   []string{"drafts/**", "**/research/**"},
	}))

	assert.NoFileExists(t, filepath.Join(wikiDir, "design_docs", "drafts", "wip.md"))
	assert.FileExists(t, filepath.Join(wikiDir, "design_docs", "strategy", "physics_plan.md"))

	sidebar, err := os.ReadFile(filepath.Join(wikiDir, "_Sidebar.md"))
	require.NoError(t, err)
	assert.NotContains(t, string(sidebar), "wip")
}

func TestSyncMissingSource(t *testing.T) {
	syncer := NewSyncer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := syncer.Sync(Options{SourceDir: filepath.Join(t.TempDir(), "missing"), WikiDir: t.TempDir()})
	assert.Error(t, err)
}
