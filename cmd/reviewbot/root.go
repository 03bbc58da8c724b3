package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "reviewbot",
	Short: "reviewbot triages and reviews GitHub pull requests and issues.",
	Long: `reviewbot decides which open pull requests and issues need a fresh
AI review, selects the design documents relevant to each one, and posts the
generated review as a marker-tagged comment. Already-reviewed targets are
skipped until new commits land.`,
	SilenceUsage: true,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	cobra.OnInitialize(initConfig)
}

// initConfig makes environment variables visible to every subcommand.
func initConfig() {
	viper.AutomaticEnv()
}
