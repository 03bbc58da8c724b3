// Package docs implements the design-document corpus and the keyword-driven
// context selector that decides which documents accompany a review request.
package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExcerptLines caps how much of a document is surfaced to the reviewer.
const ExcerptLines = 150

// Corpus is a read surface over the documentation tree, keyed by
// slash-separated paths relative to the docs root.
type Corpus interface {
	Exists(path string) bool
	ReadText(path string) string
}

// DirCorpus reads documents from a directory tree on disk.
type DirCorpus struct {
	root string
}

// NewDirCorpus returns a corpus rooted at the given directory.
func NewDirCorpus(root string) *DirCorpus {
	return &DirCorpus{root: root}
}

func (c *DirCorpus) abs(path string) string {
	return filepath.Join(c.root, filepath.FromSlash(path))
}

// Exists reports whether the document is present on disk.
func (c *DirCorpus) Exists(path string) bool {
	info, err := os.Stat(c.abs(path))
	return err == nil && !info.IsDir()
}

// ReadText returns the document's content, or a literal not-found placeholder.
// Missing documents are never an error: always-include documents must appear
// in every context bundle even when absent from the checkout.
func (c *DirCorpus) ReadText(path string) string {
	data, err := os.ReadFile(c.abs(path))
	if err != nil {
		return fmt.Sprintf("(file not found: %s)", path)
	}
	return string(data)
}

// Excerpt loads a document and truncates it to the first maxLines lines,
// appending a note with the number of omitted lines.
func Excerpt(corpus Corpus, path string, maxLines int) string {
	content := corpus.ReadText(path)
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	if len(lines) <= maxLines {
		return content
	}
	omitted := len(lines) - maxLines
	return strings.Join(lines[:maxLines], "\n") +
		fmt.Sprintf("\n\n... (%d more lines — read full file if needed)", omitted)
}
