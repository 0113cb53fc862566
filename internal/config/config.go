package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultOutputFile is the URL list written after every scan.
	// It lands in the current working directory and is overwritten on
	// each run; the scan itself never reads it back.
	DefaultOutputFile = "urls.txt"

	// DefaultMarker is the loader-call substring that qualifies a source
	// line for URL extraction. pandas' read_csv is by far the most common
	// remote-dataset loader in public notebooks.
	DefaultMarker = "pd.read_csv"

	// AppName is the application name used for XDG directory paths.
	AppName = "nbscan"
)

// Config holds all configuration options for nbscan.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The number of options is manageable, and nesting would
// add complexity without significant benefit.
type Config struct {
	// Directory is the notebook directory to scan. Exactly one directory
	// is scanned per run, non-recursively.
	Directory string

	// OutputFile is where the sorted URL list is written.
	OutputFile string

	// Markers are the loader-call substrings that qualify a line for
	// extraction. Defaults to the single pd.read_csv marker.
	Markers []string

	// KeepCorrupt reports corrupt notebook files without deleting them.
	// The default is to delete, matching the batch-cleanup purpose of
	// the tool.
	KeepCorrupt bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON summary output instead of the human-readable
	// format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown summary output instead of the
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output path for the scan summary.
	// When set, the summary is written to this file instead of stdout.
	ReportFile string

	// ConfigFilePath is the path to the rules file.
	// If empty, the tool searches for .nbscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// DBDir is the directory holding the SQLite scan history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to record the run in the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero (output file, markers).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		OutputFile: DefaultOutputFile,
		Markers:    []string{DefaultMarker},
	}
}

// XDGDataDir returns the XDG data directory for nbscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/nbscan
// On macOS: ~/Library/Application Support/nbscan
// On Windows: %LOCALAPPDATA%\nbscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for nbscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any scanning begins.
func (c *Config) Validate() error {
	if c.Directory == "" {
		return ErrNoDirectory
	}

	if c.OutputFile == "" {
		return ErrNoOutputFile
	}

	if len(c.Markers) == 0 {
		return ErrNoMarkers
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
