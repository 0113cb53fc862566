// Package scanner implements the notebook directory pass.
//
// A scan is a single forward walk over one directory: every entry is read,
// decoded, and searched for dataset URLs. Files that fail byte decoding or
// JSON parsing are corrupt; by default they are deleted from disk after a
// "removing <path>" diagnostic, and the pass continues with the next entry.
package scanner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/nbscan/nbscan/internal/extract"
	"github.com/nbscan/nbscan/internal/model"
)

// Scanner scans notebook directories for dataset URLs.
type Scanner struct {
	// extractor performs per-line URL extraction.
	extractor *extract.Extractor

	// logger for structured logging.
	logger *slog.Logger

	// diag receives the "removing <path>" diagnostics. Defaults to stdout;
	// tests redirect it.
	diag io.Writer

	// keepCorrupt flags corrupt files in the report without deleting them.
	keepCorrupt bool
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets a custom logger for the scanner.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithDiagnosticWriter redirects the per-file removal diagnostics.
func WithDiagnosticWriter(w io.Writer) Option {
	return func(s *Scanner) {
		s.diag = w
	}
}

// WithKeepCorrupt disables deletion of corrupt files. They are still
// reported and diagnosed, just left on disk.
func WithKeepCorrupt(keep bool) Option {
	return func(s *Scanner) {
		s.keepCorrupt = keep
	}
}

// New creates a Scanner using the given extractor.
func New(extractor *extract.Extractor, opts ...Option) *Scanner {
	s := &Scanner{
		extractor: extractor,
		diag:      os.Stdout,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.extractor == nil {
		s.extractor = extract.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// bomDecoder strips a leading UTF-8 byte order mark. Notebooks saved by
// Windows editors frequently carry one, and encoding/json rejects it.
var bomDecoder = unicode.UTF8BOM

// ScanDirectory scans every entry of dir, non-recursively, and returns the
// accumulated report. The URL set is threaded through the report value;
// there is no package-level state.
//
// An unreadable directory is a fatal error; per-file failures are recovered
// locally and never abort the pass. Cancellation is checked between files,
// so an interrupted run has processed a prefix of the directory and written
// no output file.
func (s *Scanner) ScanDirectory(ctx context.Context, dir string) (*model.ScanReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	report := model.NewScanReport(dir)
	start := time.Now()

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		path := filepath.Join(dir, entry.Name())
		s.scanFile(path, report)
		report.FilesScanned++
	}

	report.Elapsed = time.Since(start)

	s.logger.Info("scan completed",
		"directory", dir,
		"files", report.FilesScanned,
		"urls", report.URLCount(),
		"removed", len(report.RemovedFiles),
	)

	return report, nil
}

// scanFile processes a single directory entry, accumulating into report.
// Corrupt entries are handled here and never propagate an error.
func (s *Scanner) scanFile(path string, report *model.ScanReport) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Non-regular files (subdirectories, sockets) land here too and
		// get the same corrupt-file treatment as undecodable bytes.
		s.logger.Debug("read failed", "path", path, "error", err)
		s.removeCorrupt(path, model.ReasonReadFailure, report)
		return
	}

	if !utf8.Valid(data) {
		s.removeCorrupt(path, model.ReasonInvalidEncoding, report)
		return
	}

	decoded, _, err := transform.Bytes(bomDecoder.NewDecoder(), data)
	if err != nil {
		s.removeCorrupt(path, model.ReasonInvalidEncoding, report)
		return
	}

	nb, err := model.ParseNotebook(decoded)
	if err != nil {
		s.removeCorrupt(path, model.ReasonInvalidJSON, report)
		return
	}

	for _, cell := range nb.Cells {
		if !cell.IsCode() || len(cell.Source) == 0 {
			continue
		}
		report.CellsScanned++
		for _, url := range s.extractor.ExtractCell(cell) {
			report.AddURL(url)
		}
	}
}

// removeCorrupt emits the removal diagnostic, deletes the file unless
// keep-corrupt mode is on, and records the outcome in the report.
func (s *Scanner) removeCorrupt(path string, reason model.RemovalReason, report *model.ScanReport) {
	fmt.Fprintf(s.diag, "removing %s\n", path)

	kept := s.keepCorrupt
	if !s.keepCorrupt {
		if err := os.Remove(path); err != nil {
			// The file stays; record it as kept so the report reflects
			// what is actually on disk.
			s.logger.Warn("failed to remove corrupt file", "path", path, "error", err)
			kept = true
		}
	}

	report.AddRemovedFile(path, reason, kept)
}

