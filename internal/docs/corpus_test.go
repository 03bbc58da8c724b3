package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirCorpus(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "strategy"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "strategy", "plan.md"), []byte("# Plan\n"), 0o644))

	corpus := NewDirCorpus(root)

	assert.True(t, corpus.Exists("strategy/plan.md"))
	assert.False(t, corpus.Exists("strategy/missing.md"))
	assert.False(t, corpus.Exists("strategy"), "directories are not documents")

	assert.Equal(t, "# Plan\n", corpus.ReadText("strategy/plan.md"))
	assert.Equal(t, "(file not found: strategy/missing.md)", corpus.ReadText("strategy/missing.md"))
}

func TestExcerptTruncation(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 400; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	corpus := mapCorpus{"big.md": b.String()}

	got := Excerpt(corpus, "big.md", ExcerptLines)

	lines := strings.Split(got, "\n")
	assert.Equal(t, "line 1", lines[0])
	assert.Equal(t, "line 150", lines[149])
	assert.NotContains(t, got, "line 151")
	assert.Contains(t, got, "(250 more lines")
}

func TestExcerptShortDocUnchanged(t *testing.T) {
	corpus := mapCorpus{"small.md": "one\ntwo\nthree\n"}
	assert.Equal(t, "one\ntwo\nthree\n", Excerpt(corpus, "small.md", ExcerptLines))
}

func TestExcerptMissingDocUsesPlaceholder(t *testing.T) {
	corpus := mapCorpus{}
	assert.Equal(t, "(file not found: ghost.md)", Excerpt(corpus, "ghost.md", ExcerptLines))
}

func TestLoadIndex(t *testing.T) {
	t.Run("Empty path returns default index", func(t *testing.T) {
		idx, err := LoadIndex("")
		require.NoError(t, err)
		assert.NotEmpty(t, idx.AlwaysInclude)
		assert.NotEmpty(t, idx.Rules)
	})

	t.Run("Valid rules file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yml")
		content := `
always_include:
  - TERMINOLOGY.md
rules:
  - keywords: ["physics", "multi.view"]
    doc: physics_plan.md
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		idx, err := LoadIndex(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"TERMINOLOGY.md"}, idx.AlwaysInclude)
		require.Len(t, idx.Rules, 1)
		assert.Equal(t, "physics_plan.md", idx.Rules[0].Doc)
	})

	t.Run("Missing always-include set is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yml")
		require.NoError(t, os.WriteFile(path, []byte("rules: []\n"), 0o644))

		_, err := LoadIndex(path)
		assert.Error(t, err)
	})

	t.Run("Unreadable file", func(t *testing.T) {
		_, err := LoadIndex(filepath.Join(t.TempDir(), "absent.yml"))
		assert.Error(t, err)
	})
}
