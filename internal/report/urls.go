package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nbscan/nbscan/internal/model"
)

// URLListWriter outputs the extracted URL set as plain text, one URL per
// line, lexicographically sorted, each line newline-terminated. This is
// the primary output format of a scan run.
type URLListWriter struct {
	baseWriter
}

// NewURLListWriter creates a URLListWriter that outputs to the given writer.
func NewURLListWriter(output io.Writer) *URLListWriter {
	return &URLListWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the sorted URL list. An empty set writes nothing and
// returns (0, nil).
func (w *URLListWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder
	for _, url := range report.SortedURLs() {
		sb.WriteString(url)
		sb.WriteString("\n")
	}
	return w.output.Write([]byte(sb.String()))
}

// WriteURLFile writes the report's URL set to path, truncating any prior
// contents. The file is created even when the set is empty, so a run over
// a directory with no matches still leaves an (empty) output file behind.
// On success the path is recorded in the report.
func WriteURLFile(path string, report *model.ScanReport) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if _, err := NewURLListWriter(f).Write(report); err != nil {
		_ = f.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("failed to write output file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	report.OutputFile = path
	return nil
}
