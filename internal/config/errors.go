package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoDirectory is returned when no notebook directory is specified.
	ErrNoDirectory = errors.New("no directory specified: provide a notebook directory as the argument")

	// ErrNoOutputFile is returned when the URL list output path is empty.
	ErrNoOutputFile = errors.New("no output file specified: provide a path for the URL list")

	// ErrNoMarkers is returned when the loader marker list is empty.
	// With no markers no line could ever qualify for extraction.
	ErrNoMarkers = errors.New("no loader markers configured: at least one marker is required")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
