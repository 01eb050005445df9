// Package app wires the spruce CLI.
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dodobyrd/Spruce-for-Munki/internal/repo"
)

var (
	flagRepo string
	flagDB   string

	// RootCmd is the root command for spruce
	RootCmd = &cobra.Command{
		Use:   "spruce",
		Short: "Clean up unused and out-of-date items in a Munki repo",
		Long: `spruce analyzes a Munki repository and helps you remove the cruft.

It resolves which items are actually in use by closing over manifest
references plus the requires and update_for dependency keys, reports on
orphaned installers, missing installers, unused and out-of-date items,
and removes or archives selected items while keeping pkgsinfo, pkgs,
and manifests consistent.

The repository root comes from --repo or the MUNKI_REPO environment
variable.

Examples:
  # Run the full report suite
  spruce report --repo /Volumes/munki_repo

  # Machine-readable output
  spruce report --plist > report.plist

  # Remove everything in a category, archiving instead of deleting
  spruce deprecate --category "Obsolete" --archive /path/to/archive

  # Remove specific products by name
  spruce deprecate --name Firefox --name OldTool

  # Review past removals
  spruce history`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("spruce: Munki repo reporting and cleanup")
			fmt.Println()
			fmt.Println("Run 'spruce report' to analyze your repo.")
			fmt.Println("Run 'spruce --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&flagRepo, "repo", "", "Munki repo root (default: $MUNKI_REPO)")
	RootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "journal database path (default: ~/.spruce/spruce.db)")

	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// resolveRepo resolves the repository root from the --repo flag or the
// MUNKI_REPO environment variable. Everything downstream receives the
// resolved value explicitly.
func resolveRepo() (*repo.Repo, error) {
	root := flagRepo
	if root == "" {
		root = os.Getenv("MUNKI_REPO")
	}
	if root == "" {
		return nil, fmt.Errorf("no repo specified: use --repo or set MUNKI_REPO")
	}
	return repo.New(root), nil
}

// getDBPath returns the journal database path, using the flag value or default.
func getDBPath() (string, error) {
	if flagDB != "" {
		return flagDB, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	spruceDir := filepath.Join(home, ".spruce")
	if err := os.MkdirAll(spruceDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create spruce directory: %w", err)
	}

	return filepath.Join(spruceDir, "spruce.db"), nil
}
