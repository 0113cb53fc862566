package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nbscan/nbscan/internal/model"
)

// SimpleWriter outputs human-readable text summaries of a scan run.
// This format is designed for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showURLs includes the full URL list in the summary. Off by default
	// because the URL list already lands in its own output file.
	showURLs bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowURLs includes the extracted URLs in the summary output.
func WithShowURLs(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showURLs = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the scan summary in human-readable format.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeRemovedFiles(&sb, report)
	if w.showURLs {
		w.writeURLs(&sb, report)
	}

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with scan information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          NBSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Directory:  %s\n", report.Directory))
	sb.WriteString(fmt.Sprintf("Scan Date:  %s\n", report.DateScanned.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:   %s\n", report.Elapsed))
	if report.OutputFile != "" {
		sb.WriteString(fmt.Sprintf("URL List:   %s\n", report.OutputFile))
	}
	sb.WriteString("\n")
}

// writeSummary writes the scan statistics section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Files scanned:   %d\n", report.FilesScanned))
	sb.WriteString(fmt.Sprintf("  Code cells:      %d\n", report.CellsScanned))
	sb.WriteString(fmt.Sprintf("  Distinct URLs:   %d\n", report.URLCount()))
	sb.WriteString(fmt.Sprintf("  Corrupt files:   %d\n", len(report.RemovedFiles)))
	sb.WriteString("\n")
}

// writeRemovedFiles lists corrupt files handled during the run.
func (w *SimpleWriter) writeRemovedFiles(sb *strings.Builder, report *model.ScanReport) {
	if len(report.RemovedFiles) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CORRUPT FILES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, rf := range report.RemovedFiles {
		state := "removed"
		if rf.Kept {
			state = "kept"
		}
		sb.WriteString(fmt.Sprintf("  [%s] %s (%s)\n", state, rf.Path, rf.Reason))
	}
	sb.WriteString("\n")
}

// writeURLs lists the extracted URLs in output order.
func (w *SimpleWriter) writeURLs(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("EXTRACTED URLS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	urls := report.SortedURLs()
	if len(urls) == 0 {
		sb.WriteString("  No URLs extracted\n")
	} else {
		for _, url := range urls {
			sb.WriteString(fmt.Sprintf("  [+] %s\n", url))
		}
	}
	sb.WriteString("\n")
}
