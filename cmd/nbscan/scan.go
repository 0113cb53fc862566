package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nbscan/nbscan/internal/config"
	"github.com/nbscan/nbscan/internal/database"
	"github.com/nbscan/nbscan/internal/extract"
	nblog "github.com/nbscan/nbscan/internal/log"
	"github.com/nbscan/nbscan/internal/model"
	"github.com/nbscan/nbscan/internal/report"
	"github.com/nbscan/nbscan/internal/scanner"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <directory>",
		Short: "Scan a notebook directory for dataset URLs",
		Long: `Scan walks a directory of Jupyter notebook files (non-recursively),
extracts the URLs passed to CSV-loading calls in code cells, and writes
the deduplicated, sorted list to a text file (default: urls.txt).

Files that fail JSON parsing or UTF-8 decoding are corrupt: each one is
reported as "removing <path>" and deleted from disk. Use --keep-corrupt
to report them without deleting.

Examples:
  # Scan a directory and write urls.txt
  nbscan scan ./notebooks

  # Write the URL list somewhere else
  nbscan scan -o dataset-urls.txt ./notebooks

  # Report corrupt files without deleting them
  nbscan scan --keep-corrupt ./notebooks

  # Print the scan summary as JSON
  nbscan scan --json ./notebooks

  # Use a custom rules file
  nbscan scan -c myrules.yaml ./notebooks

Rules file (.nbscan) example:
  output: dataset-urls.txt
  markers:
    - pd.read_csv
    - pd.read_table
  keep_corrupt: false`,
		Args: cobra.ExactArgs(1),
		RunE: runScanCmd,
	}

	// Scan behavior flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile,
		"Path of the URL list file (overwritten on every run)")
	cmd.Flags().BoolP("keep-corrupt", "k", false,
		"Report corrupt notebook files without deleting them")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Rules file path (default: .nbscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON scan summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown scan summary (mutually exclusive with --json)")
	cmd.Flags().StringP("report", "r", "",
		"Write the scan summary to the specified file path")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the rules file.
// Precedence, lowest to highest: built-in defaults, rules file, CLI flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load the rules file before flags so explicit flags win.
	// If the user explicitly specified a rules file path, error if not
	// found. If no path was specified, silently proceed without one.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		rules, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		rules.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if cmd.Flags().Changed("output") {
		cfg.OutputFile, err = cmd.Flags().GetString("output")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("keep-corrupt") {
		cfg.KeepCorrupt, err = cmd.Flags().GetBool("keep-corrupt")
		if err != nil {
			return nil, err
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("report")
	if err != nil {
		return nil, err
	}

	// Always record the run using the XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	// Positional argument (the notebook directory). Normalized to an
	// absolute path so history records match across working directories.
	cfg.Directory, err = filepath.Abs(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid directory path: %w", err)
	}

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// The handler is wrapped so oversized attribute values (notebook source
// lines) are capped.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := nblog.NewTruncateHandler(slog.NewTextHandler(os.Stderr, opts))
	return slog.New(handler)
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"directory", cfg.Directory,
		"output", cfg.OutputFile,
		"markers", cfg.Markers,
		"keepCorrupt", cfg.KeepCorrupt,
	)

	// Open the history database if recording is enabled
	var db *database.ScanDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	s := scanner.New(
		extract.New(extract.WithMarkers(cfg.Markers...)),
		scanner.WithLogger(logger),
		scanner.WithKeepCorrupt(cfg.KeepCorrupt),
	)

	fmt.Printf("Scanning %s...\n", cfg.Directory)
	startTime := time.Now()

	scanReport, err := s.ScanDirectory(ctx, cfg.Directory)
	if err != nil {
		return err
	}

	if err := report.WriteURLFile(cfg.OutputFile, scanReport); err != nil {
		return err
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Scan completed in %s\n", elapsed.Round(time.Millisecond))

	// Generate and output the summary report
	if err := outputReport(cfg, scanReport); err != nil {
		logger.Error("report failed", "directory", cfg.Directory, "error", err)
	}

	// Save to database if enabled
	if err := saveScanReport(ctx, db, scanReport, logger); err != nil {
		logger.Error("failed to save scan report", "directory", cfg.Directory, "error", err)
	}

	return nil
}

// outputReport outputs the scan summary in the requested format.
func outputReport(cfg *config.Config, scanReport *model.ScanReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output)
	}

	_, err := w.Write(scanReport)
	return err
}

// saveScanReport saves the scan report to the database if enabled.
// If db is nil, this function is a no-op.
func saveScanReport(ctx context.Context, db *database.ScanDB, scanReport *model.ScanReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	scanID, err := db.SaveScanReport(ctx, scanReport)
	if err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}

	logger.Info("scan report saved to database",
		"directory", scanReport.Directory,
		"scanID", scanID,
	)
	return nil
}
