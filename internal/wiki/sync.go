// Package wiki mirrors the repository design docs into a GitHub wiki
// checkout and regenerates its navigation pages.
package wiki

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5"
)

// Options configures one sync run.
type Options struct {
	SourceDir string   // docs tree to mirror
	WikiDir   string   // checked-out wiki repository
	Exclude   []string // doublestar globs relative to SourceDir
}

// Syncer copies a docs tree into a wiki checkout.
type Syncer struct {
	logger *slog.Logger
}

func NewSyncer(logger *slog.Logger) *Syncer {
	return &Syncer{logger: logger}
}

// CloneWiki clones the wiki repository into dir when no checkout exists yet.
func CloneWiki(ctx context.Context, url, dir string, logger *slog.Logger) error {
	logger.Info("cloning wiki repository", "url", url, "dir", dir)
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:   url,
		Depth: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to clone wiki repository: %w", err)
	}
	return nil
}

// Sync wipes the wiki checkout (keeping .git), mirrors the docs tree into
// it, and rewrites Home.md and _Sidebar.md.
func (s *Syncer) Sync(opts Options) error {
	if err := checkDir(opts.SourceDir); err != nil {
		return err
	}
	if err := checkDir(opts.WikiDir); err != nil {
		return err
	}

	if err := s.wipe(opts.WikiDir); err != nil {
		return fmt.Errorf("failed to wipe wiki content: %w", err)
	}
	if err := s.copyTree(opts); err != nil {
		return fmt.Errorf("failed to copy docs tree: %w", err)
	}

	home, err := BuildHome(opts.SourceDir, opts.Exclude)
	if err != nil {
		return err
	}
	sidebar, err := BuildSidebar(opts.SourceDir, opts.Exclude)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(opts.WikiDir, "Home.md"), []byte(home), 0o644); err != nil {
		return fmt.Errorf("failed to write Home.md: %w", err)
	}
	if err := os.WriteFile(filepath.Join(opts.WikiDir, "_Sidebar.md"), []byte(sidebar), 0o644); err != nil {
		return fmt.Errorf("failed to write _Sidebar.md: %w", err)
	}

	s.logger.Info("wiki sync complete", "source", opts.SourceDir, "wiki", opts.WikiDir)
	return nil
}

func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("directory not found: %s", dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}
	return nil
}

// wipe removes everything under the wiki checkout except the .git directory.
func (s *Syncer) wipe(wikiDir string) error {
	entries, err := os.ReadDir(wikiDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.Name() == ".git" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(wikiDir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// copyTree mirrors the source directory into the wiki checkout, keeping the
// source directory name as the top-level prefix so page links stay stable.
func (s *Syncer) copyTree(opts Options) error {
	base := filepath.Base(opts.SourceDir)
	return filepath.WalkDir(opts.SourceDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(opts.SourceDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return os.MkdirAll(filepath.Join(opts.WikiDir, base), 0o755)
		}
		if excluded(rel, opts.Exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(opts.WikiDir, base, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

func excluded(rel string, globs []string) bool {
	relPosix := filepath.ToSlash(rel)
	for _, glob := range globs {
		if ok, err := doublestar.Match(glob, relPosix); err == nil && ok {
			return true
		}
	}
	return false
}

// pageTarget turns a doc path into its wiki page link target.
func pageTarget(rel string) string {
	return strings.TrimSuffix(filepath.ToSlash(rel), ".md")
}

// BuildSidebar renders _Sidebar.md: a Home link followed by the full docs
// tree, directories in bold, pages as links.
func BuildSidebar(sourceDir string, exclude []string) (string, error) {
	base := filepath.Base(sourceDir)
	lines := []string{"- [Home](Home)", fmt.Sprintf("- **%s**", base)}

	var walk func(dir, relPrefix string, depth int) error
	walk = func(dir, relPrefix string, depth int) error {
		entries, err := sortedEntries(dir)
		if err != nil {
			return err
		}
		indent := strings.Repeat("  ", depth)
		for _, entry := range entries {
			rel := filepath.Join(relPrefix, entry.Name())
			if excluded(strings.TrimPrefix(filepath.ToSlash(rel), base+"/"), exclude) {
				continue
			}
			if entry.IsDir() {
				lines = append(lines, fmt.Sprintf("%s- **%s**", indent, entry.Name()))
				if err := walk(filepath.Join(dir, entry.Name()), rel, depth+1); err != nil {
					return err
				}
				continue
			}
			if !strings.EqualFold(filepath.Ext(entry.Name()), ".md") {
				continue
			}
			title := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			lines = append(lines, fmt.Sprintf("%s- [%s](%s)", indent, title, pageTarget(rel)))
		}
		return nil
	}

	if err := walk(sourceDir, base, 1); err != nil {
		return "", err
	}
	return strings.Join(lines, "\n") + "\n", nil
}

// BuildHome renders Home.md: top-level docs as links and top-level
// directories as sections.
func BuildHome(sourceDir string, exclude []string) (string, error) {
	base := filepath.Base(sourceDir)
	entries, err := sortedEntries(sourceDir)
	if err != nil {
		return "", err
	}

	lines := []string{
		"# Graphshell Design Docs",
		"",
		fmt.Sprintf("This wiki is auto-synced from the repository `%s/` directory.", base),
		"",
		"## Top-level Docs",
	}

	var docs, dirs []string
	for _, entry := range entries {
		if excluded(entry.Name(), exclude) {
			continue
		}
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".md") {
			docs = append(docs, entry.Name())
		}
	}

	if len(docs) == 0 {
		lines = append(lines, "- (none)")
	}
	for _, doc := range docs {
		title := strings.TrimSuffix(doc, filepath.Ext(doc))
		lines = append(lines, fmt.Sprintf("- [%s](%s)", title, pageTarget(filepath.Join(base, doc))))
	}

	lines = append(lines, "", "## Sections")
	for _, dir := range dirs {
		lines = append(lines, fmt.Sprintf("- **%s**", dir))
	}

	lines = append(lines,
		"",
		"Use `_Sidebar` for full directory navigation.",
		"",
		fmt.Sprintf("_Last sync source: `%s/`_", base),
	)
	return strings.Join(lines, "\n") + "\n", nil
}

// sortedEntries lists a directory with subdirectories first, then files,
// each group ordered case-insensitively by name.
func sortedEntries(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})
	return entries, nil
}
