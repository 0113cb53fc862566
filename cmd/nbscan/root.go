// Package main provides the entry point for the nbscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for nbscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nbscan",
		Short: "Extract dataset URLs from Jupyter notebooks",
		Long: `nbscan scans a directory of Jupyter notebook files, extracts the URLs
passed to CSV-loading calls (pd.read_csv) in code cells, and writes the
deduplicated, sorted list to a text file.

Notebook files that are not valid JSON or not valid UTF-8 are considered
corrupt and deleted from disk (use --keep-corrupt to only report them).
Every run is recorded in a local history database so 'nbscan compare'
can diff the URL sets of consecutive runs.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
