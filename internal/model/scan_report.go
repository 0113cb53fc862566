package model

import (
	"encoding/json"
	"sort"
	"time"
)

// RemovalReason explains why the scanner removed (or flagged) a file.
type RemovalReason string

// Removal reasons recorded for corrupt notebook files.
const (
	// ReasonReadFailure covers unreadable entries, including non-regular
	// files such as subdirectories.
	ReasonReadFailure RemovalReason = "read_failure"

	// ReasonInvalidEncoding covers files whose bytes are not valid UTF-8.
	ReasonInvalidEncoding RemovalReason = "invalid_encoding"

	// ReasonInvalidJSON covers files with malformed JSON syntax.
	ReasonInvalidJSON RemovalReason = "invalid_json"
)

// RemovedFile records one corrupt notebook handled during a scan.
type RemovedFile struct {
	// Path is the full path of the removed file.
	Path string `json:"path"`

	// Reason classifies why the file was considered corrupt.
	Reason RemovalReason `json:"reason"`

	// Kept is true when the file was flagged but left on disk
	// (keep-corrupt mode).
	Kept bool `json:"kept,omitempty"`
}

// ScanReport is the result of scanning one notebook directory.
//
// Design decision: The URL set is an explicit value carried by the report
// rather than package-level state. The scanner builds exactly one report
// per run, threads it through the per-file pass, and hands it to the
// writers, so no ambient accumulator exists anywhere.
type ScanReport struct {
	// Directory is the scanned directory path.
	Directory string `json:"directory"`

	// DateScanned is when the scan started.
	DateScanned time.Time `json:"date_scanned"`

	// Elapsed is the wall-clock scan duration.
	Elapsed time.Duration `json:"elapsed"`

	// FilesScanned is the number of directory entries processed,
	// including corrupt ones.
	FilesScanned int `json:"files_scanned"`

	// CellsScanned is the number of code cells inspected.
	CellsScanned int `json:"cells_scanned"`

	// RemovedFiles lists corrupt files deleted (or flagged) during the run.
	RemovedFiles []RemovedFile `json:"removed_files,omitempty"`

	// OutputFile is the path the URL list was written to.
	// Empty until finalization.
	OutputFile string `json:"output_file,omitempty"`

	// urls is the deduplicating accumulator. Keys are extracted URLs.
	urls map[string]struct{}
}

// NewScanReport creates an empty report for the given directory.
func NewScanReport(directory string) *ScanReport {
	return &ScanReport{
		Directory:   directory,
		DateScanned: time.Now(),
		urls:        make(map[string]struct{}),
	}
}

// AddURL adds an extracted URL to the report's set.
// Duplicates are collapsed silently.
func (r *ScanReport) AddURL(url string) {
	if url == "" {
		return
	}
	if r.urls == nil {
		r.urls = make(map[string]struct{})
	}
	r.urls[url] = struct{}{}
}

// AddRemovedFile records a corrupt file.
func (r *ScanReport) AddRemovedFile(path string, reason RemovalReason, kept bool) {
	r.RemovedFiles = append(r.RemovedFiles, RemovedFile{
		Path:   path,
		Reason: reason,
		Kept:   kept,
	})
}

// URLCount returns the number of distinct URLs accumulated so far.
func (r *ScanReport) URLCount() int {
	return len(r.urls)
}

// SortedURLs materializes the URL set as a lexicographically sorted slice.
// This is the only ordering the output file format guarantees.
func (r *ScanReport) SortedURLs() []string {
	urls := make([]string, 0, len(r.urls))
	for u := range r.urls {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// MarshalJSON serializes the report with the URL set materialized as a
// sorted "urls" array, so JSON output and database storage see a stable
// ordering.
func (r *ScanReport) MarshalJSON() ([]byte, error) {
	type alias ScanReport
	return json.Marshal(&struct {
		*alias
		URLs []string `json:"urls"`
	}{
		alias: (*alias)(r),
		URLs:  r.SortedURLs(),
	})
}

// SetURLs replaces the accumulated set. Used when rehydrating a report
// from the scan history database.
func (r *ScanReport) SetURLs(urls []string) {
	r.urls = make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if u != "" {
			r.urls[u] = struct{}{}
		}
	}
}
