package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/graphshell/reviewbot/internal/logger"
	"github.com/graphshell/reviewbot/internal/wiki"
)

var (
	wikiSource  string
	wikiDir     string
	wikiURL     string
	wikiExclude []string
)

var wikiSyncCmd = &cobra.Command{
	Use:   "wiki-sync",
	Short: "Mirror the design docs into a GitHub wiki checkout",
	Long: `Mirror the design docs directory into a GitHub wiki checkout and
regenerate Home.md and _Sidebar.md. Everything in the checkout except .git
is replaced.

Examples:
  reviewbot wiki-sync --wiki-dir ../graphshell.wiki
  reviewbot wiki-sync --wiki-url https://github.com/graphshell/graphshell.wiki.git --wiki-dir /tmp/wiki
  reviewbot wiki-sync --wiki-dir ../graphshell.wiki --exclude 'drafts/**'`,
	RunE: runWikiSync,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	wikiSyncCmd.Flags().StringVar(&wikiSource, "source", "design_docs", "source docs directory")
	wikiSyncCmd.Flags().StringVar(&wikiDir, "wiki-dir", "", "checked-out wiki repository path")
	wikiSyncCmd.Flags().StringVar(&wikiURL, "wiki-url", "", "wiki repository URL to clone when --wiki-dir does not exist yet")
	wikiSyncCmd.Flags().StringArrayVar(&wikiExclude, "exclude", nil, "glob of docs to skip (repeatable)")
	_ = wikiSyncCmd.MarkFlagRequired("wiki-dir")
	rootCmd.AddCommand(wikiSyncCmd)
}

func runWikiSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Docs sync needs no GitHub credentials, so skip full config loading.
	log := logger.New(logger.Config{Level: "info", Format: "text", Output: "stderr"}, nil)

	if wikiURL != "" {
		if _, statErr := os.Stat(wikiDir); os.IsNotExist(statErr) {
			if err := wiki.CloneWiki(ctx, wikiURL, wikiDir, log); err != nil {
				return err
			}
		}
	}

	syncer := wiki.NewSyncer(log)
	return syncer.Sync(wiki.Options{
		SourceDir: wikiSource,
		WikiDir:   wikiDir,
		Exclude:   wikiExclude,
	})
}
