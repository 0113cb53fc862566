package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nbscan/nbscan/internal/config"
	"github.com/nbscan/nbscan/internal/database"
)

// Constants for URL set change direction.
const (
	urlsDirectionGrew      = "grew"
	urlsDirectionShrank    = "shrank"
	urlsDirectionUnchanged = "unchanged"
)

// NewCompareCmd creates the compare command.
// This command compares scan results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [directory]",
		Short: "Compare scan results with historical data",
		Long: `Compare displays differences between the current and previous scan results.

This command retrieves historical scan data from the database and shows:
- URLs that appeared since the previous scan
- URLs that disappeared since the previous scan
- Changes in file and cell counts

The comparison requires at least two scans in the database for the specified
directory. Use 'nbscan scan' to perform scans and record results.

Examples:
  # Compare latest two scans for a directory
  nbscan compare ./notebooks

  # List all scan history for a directory
  nbscan compare --list ./notebooks

  # Compare with a specific historical scan by ID
  nbscan compare --with-scan-id 5 ./notebooks

  # Compare with the first scan after a specific date
  nbscan compare --since "2025-01-01" ./notebooks

  # Output comparison in JSON format
  nbscan compare --json ./notebooks

  # List all scanned directories in the database
  nbscan compare --list-dirs`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List scan history for the specified directory")
	cmd.Flags().BoolP("list-dirs", "L", false,
		"List all scanned directories in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-scan-id", "i", 0,
		"Compare with a specific scan by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first scan after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-dirs flag first (requires database but no directory)
	listDirs, err := cmd.Flags().GetBool("list-dirs")
	if err != nil {
		return err
	}

	// Validate arguments before opening database (unless --list-dirs)
	var directory string
	if !listDirs {
		// Require a directory for other operations
		if len(args) == 0 {
			return errors.New("directory is required (use --list-dirs to see scanned directories)")
		}

		// Normalize to an absolute path so history lookups match
		// what the scan command recorded.
		directory, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid directory path: %w", err)
		}
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	// Open database
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Handle --list-dirs flag
	if listDirs {
		return listScannedDirectories(ctx, db)
	}

	// Handle --list flag
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listScanHistory(ctx, db, directory)
	}

	// Get output format flag
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Get comparison target flags
	withScanID, err := cmd.Flags().GetInt64("with-scan-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	// Perform comparison
	return runComparison(ctx, db, directory, withScanID, sinceDate, jsonOutput)
}

// listScannedDirectories lists all directories that have scan records in the database.
func listScannedDirectories(ctx context.Context, db *database.ScanDB) error {
	dirs, err := db.ListScannedDirectories(ctx)
	if err != nil {
		return fmt.Errorf("failed to list directories: %w", err)
	}

	if len(dirs) == 0 {
		fmt.Println("No scanned directories found in the database.")
		fmt.Println("\nUse 'nbscan scan <directory>' to scan a notebook directory.")
		return nil
	}

	fmt.Printf("Scanned directories (%d):\n\n", len(dirs))
	for _, dir := range dirs {
		fmt.Printf("  • %s\n", dir)
	}
	fmt.Println("\nUse 'nbscan compare --list <directory>' to see scan history for a directory.")

	return nil
}

// listScanHistory lists all scan records for a specific directory.
func listScanHistory(ctx context.Context, db *database.ScanDB, directory string) error {
	records, err := db.ScanHistory(ctx, directory)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(records) == 0 {
		fmt.Printf("No scan history found for %s\n", directory)
		fmt.Println("\nUse 'nbscan scan' to scan this directory.")
		return nil
	}

	fmt.Printf("Scan history for %s (%d scans):\n\n", directory, len(records))
	fmt.Printf("  %-6s  %-20s  %-8s  %-8s  %s\n", "ID", "Date", "Files", "URLs", "Removed")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, rec := range records {
		fmt.Printf("  %-6d  %-20s  %-8d  %-8d  %d\n",
			rec.ID,
			rec.DateScanned.Format("2006-01-02 15:04:05"),
			rec.FilesScanned,
			rec.URLsFound,
			rec.RemovedCount,
		)
	}

	fmt.Println("\nUse 'nbscan compare <directory>' to compare the latest two scans.")
	fmt.Println("Use 'nbscan compare --with-scan-id <id> <directory>' to compare with a specific scan.")

	return nil
}

// runComparison performs the actual comparison between scan records.
func runComparison(ctx context.Context, db *database.ScanDB, directory string, withScanID int64, sinceDate string, jsonOutput bool) error {
	// Get the scan history
	records, err := db.ScanHistory(ctx, directory)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(records) == 0 {
		return fmt.Errorf("no scan history found for %s", directory)
	}

	if len(records) < 2 && withScanID == 0 && sinceDate == "" {
		return fmt.Errorf("at least 2 scans are required for comparison (found %d)", len(records))
	}

	// Latest scan is always the current one
	current := records[0]
	var previous database.ScanRecord

	switch {
	case withScanID > 0:
		// Find the record with the specified ID
		rec, err := db.ScanByID(ctx, withScanID)
		if err != nil {
			return fmt.Errorf("failed to get scan with ID %d: %w", withScanID, err)
		}
		if rec == nil {
			return fmt.Errorf("scan with ID %d not found", withScanID)
		}
		// Validate that the scan ID belongs to the same directory
		if rec.Directory != directory {
			return fmt.Errorf("scan ID %d belongs to %s, not %s", withScanID, rec.Directory, directory)
		}
		previous = *rec
	case sinceDate != "":
		// Parse the date and find the first (oldest) record at or after the specified date
		parsedDate, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// Records are sorted newest first, so iterate in reverse to
		// find the oldest record at or after the date.
		found := false
		for i := len(records) - 1; i >= 0; i-- {
			rec := records[i]
			if rec.DateScanned.After(parsedDate) || rec.DateScanned.Equal(parsedDate) {
				previous = rec
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("no scans found since %s", sinceDate)
		}
		if previous.ID == current.ID {
			return fmt.Errorf("only one scan found since %s; at least 2 scans are required for comparison", sinceDate)
		}
	default:
		// Default: compare with the previous scan
		previous = records[1]
	}

	// Load the URL sets for both scans
	previousURLs, err := db.URLsForScan(ctx, previous.ID)
	if err != nil {
		return fmt.Errorf("failed to get URLs for scan %d: %w", previous.ID, err)
	}
	currentURLs, err := db.URLsForScan(ctx, current.ID)
	if err != nil {
		return fmt.Errorf("failed to get URLs for scan %d: %w", current.ID, err)
	}

	comparison := compareScans(previous, current, previousURLs, currentURLs)

	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two scan records.
type ComparisonResult struct {
	// Directory is the scanned notebook directory.
	Directory string `json:"directory"`

	// PreviousScan contains metadata about the previous scan.
	PreviousScan ScanMetadata `json:"previous_scan"`

	// CurrentScan contains metadata about the current scan.
	CurrentScan ScanMetadata `json:"current_scan"`

	// AddedURLs contains URLs present in the current scan but not the previous.
	AddedURLs []string `json:"added_urls,omitempty"`

	// RemovedURLs contains URLs present in the previous scan but not the current.
	RemovedURLs []string `json:"removed_urls,omitempty"`

	// UnchangedCount is the number of URLs present in both scans.
	UnchangedCount int `json:"unchanged_count"`

	// URLChange describes the overall change in the URL set.
	URLChange URLChange `json:"url_change"`
}

// ScanMetadata contains metadata about a scan for comparison display.
type ScanMetadata struct {
	// ScanID is the database identifier of the scan.
	ScanID int64 `json:"scan_id"`

	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// FilesScanned is the number of notebook files visited.
	FilesScanned int `json:"files_scanned"`

	// CellsScanned is the number of code cells examined.
	CellsScanned int `json:"cells_scanned"`

	// URLsFound is the number of unique URLs extracted.
	URLsFound int `json:"urls_found"`

	// RemovedCount is the number of corrupt files encountered.
	RemovedCount int `json:"removed_count"`
}

// URLChange describes the change in the extracted URL set between scans.
type URLChange struct {
	// Direction is "grew", "shrank", or "unchanged".
	Direction string `json:"direction"`

	// URLDelta is the change in unique URL count.
	URLDelta int `json:"url_delta"`

	// FileDelta is the change in scanned file count.
	FileDelta int `json:"file_delta"`

	// CellDelta is the change in scanned cell count.
	CellDelta int `json:"cell_delta"`
}

// compareScans compares two scan records and generates a comparison result.
func compareScans(previous, current database.ScanRecord, previousURLs, currentURLs []string) *ComparisonResult {
	result := &ComparisonResult{
		Directory:    current.Directory,
		PreviousScan: scanMetadata(previous),
		CurrentScan:  scanMetadata(current),
	}

	previousSet := make(map[string]struct{}, len(previousURLs))
	for _, u := range previousURLs {
		previousSet[u] = struct{}{}
	}
	currentSet := make(map[string]struct{}, len(currentURLs))
	for _, u := range currentURLs {
		currentSet[u] = struct{}{}
	}

	// URLsForScan returns URLs in sorted order, so the diff slices
	// stay sorted without another pass.
	for _, u := range currentURLs {
		if _, exists := previousSet[u]; !exists {
			result.AddedURLs = append(result.AddedURLs, u)
		}
	}
	for _, u := range previousURLs {
		if _, exists := currentSet[u]; !exists {
			result.RemovedURLs = append(result.RemovedURLs, u)
		} else {
			result.UnchangedCount++
		}
	}

	result.URLChange = calculateURLChange(result.PreviousScan, result.CurrentScan)

	return result
}

// scanMetadata extracts display metadata from a scan record.
func scanMetadata(rec database.ScanRecord) ScanMetadata {
	return ScanMetadata{
		ScanID:       rec.ID,
		DateScanned:  rec.DateScanned,
		FilesScanned: rec.FilesScanned,
		CellsScanned: rec.CellsScanned,
		URLsFound:    rec.URLsFound,
		RemovedCount: rec.RemovedCount,
	}
}

// calculateURLChange calculates the change in the URL set between two scans.
func calculateURLChange(previous, current ScanMetadata) URLChange {
	change := URLChange{
		URLDelta:  current.URLsFound - previous.URLsFound,
		FileDelta: current.FilesScanned - previous.FilesScanned,
		CellDelta: current.CellsScanned - previous.CellsScanned,
	}

	if change.URLDelta > 0 {
		change.Direction = urlsDirectionGrew
	} else if change.URLDelta < 0 {
		change.Direction = urlsDirectionShrank
	} else {
		change.Direction = urlsDirectionUnchanged
	}

	return change
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Scan Comparison: %s\n", result.Directory)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nURL Set: %s\n", formatURLDirection(result.URLChange.Direction))

	fmt.Printf("\nPrevious scan: %s (ID %d)\n",
		result.PreviousScan.DateScanned.Format("2006-01-02 15:04:05"), result.PreviousScan.ScanID)
	fmt.Printf("Current scan:  %s (ID %d)\n",
		result.CurrentScan.DateScanned.Format("2006-01-02 15:04:05"), result.CurrentScan.ScanID)

	fmt.Println("\nScan Summary:")
	fmt.Printf("  %-10s  %-10s  %-10s  %-10s\n", "Metric", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Files",
		result.PreviousScan.FilesScanned, result.CurrentScan.FilesScanned,
		formatDelta(result.URLChange.FileDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Cells",
		result.PreviousScan.CellsScanned, result.CurrentScan.CellsScanned,
		formatDelta(result.URLChange.CellDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "URLs",
		result.PreviousScan.URLsFound, result.CurrentScan.URLsFound,
		formatDelta(result.URLChange.URLDelta))

	if len(result.AddedURLs) > 0 {
		fmt.Printf("\nNew URLs (%d):\n", len(result.AddedURLs))
		for _, u := range result.AddedURLs {
			fmt.Printf("  [+] %s\n", u)
		}
	}

	if len(result.RemovedURLs) > 0 {
		fmt.Printf("\nRemoved URLs (%d):\n", len(result.RemovedURLs))
		for _, u := range result.RemovedURLs {
			fmt.Printf("  [-] %s\n", u)
		}
	}

	if result.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d URLs\n", result.UnchangedCount)
	}

	return nil
}

// formatURLDirection formats the URL set change direction for display.
func formatURLDirection(direction string) string {
	switch direction {
	case urlsDirectionGrew:
		return "GREW (more URLs found)"
	case urlsDirectionShrank:
		return "SHRANK (fewer URLs found)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
