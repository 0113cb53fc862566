package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nbscan/nbscan/internal/config"
)

//go:embed templates/nbscan.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new nbscan rules file",
		Long: `Initialize creates a new .nbscan rules file in the current directory.

The generated file includes:
- The default output file path
- Commented examples for custom extraction markers
- Documentation for all available options

Examples:
  # Create .nbscan in current directory
  nbscan init

  # Create rules file at a specific path
  nbscan init -o myrules.yaml

  # Force overwrite existing file
  nbscan init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the rules file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing rules file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("rules file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := configTemplate.ReadFile("templates/nbscan.yaml")
	if err != nil {
		return fmt.Errorf("failed to read rules template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write rules file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write rules file: %w", err)
	}

	fmt.Printf("Created rules file: %s\n", outputPath)
	fmt.Println("\nEdit this file to configure scan settings such as:")
	fmt.Println("  - The output file for the extracted URL list")
	fmt.Println("  - The code markers that gate URL extraction")
	fmt.Println("  - Whether corrupt notebooks are kept or deleted")

	return nil
}
