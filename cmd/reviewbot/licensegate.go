package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/graphshell/reviewbot/internal/licensegate"
)

var licenseGateCmd = &cobra.Command{
	Use:   "license-gate <report.json>",
	Short: "Check a dependency license report against the allowlist",
	Long: `Check a dependency license scan (a JSON array of name/version/license
entries) against the permissive-license allowlist. Copyleft-only expressions
and non-allowlisted unknowns fail the gate with a non-zero exit.`,
	Args: cobra.ExactArgs(1),
	RunE: runLicenseGate,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(licenseGateCmd)
}

func runLicenseGate(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read license report: %w", err)
	}

	report, err := licensegate.GateJSON(data)
	if err != nil {
		return err
	}

	fmt.Print(report.Render())
	if !report.Passed() {
		return fmt.Errorf("license gate failed")
	}
	return nil
}
