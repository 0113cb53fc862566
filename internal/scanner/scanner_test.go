package scanner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nbscan/nbscan/internal/extract"
	"github.com/nbscan/nbscan/internal/model"
)

// writeFile is a test helper that writes content into dir.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}

const goodNotebook = `{
	"cells": [
		{"cell_type": "markdown", "source": "pd.read_csv('https://ignored.example.com/x.csv')"},
		{"cell_type": "code", "source": "df = pd.read_csv('https://example.com/data.csv')\n"},
		{"cell_type": "code", "source": ["df = pd.read_csv(\"http://a.com/x.csv\")"]}
	]
}`

// TestScannerScanDirectory tests the full directory pass.
func TestScannerScanDirectory(t *testing.T) {
	t.Parallel()

	t.Run("extracts and deduplicates URLs across files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "a.ipynb", goodNotebook)
		writeFile(t, dir, "b.ipynb", `{
			"cells": [{"cell_type": "code", "source": "x = pd.read_csv('https://example.com/data.csv')"}]
		}`)

		var diag bytes.Buffer
		s := New(extract.New(), WithDiagnosticWriter(&diag))

		report, err := s.ScanDirectory(context.Background(), dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := report.SortedURLs()
		want := []string{"http://a.com/x.csv", "https://example.com/data.csv"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, expected %v", got, want)
		}
		if report.FilesScanned != 2 {
			t.Errorf("got %d files scanned, expected 2", report.FilesScanned)
		}
		if len(report.RemovedFiles) != 0 {
			t.Errorf("expected no removed files, got %v", report.RemovedFiles)
		}
		if diag.Len() != 0 {
			t.Errorf("expected no diagnostics, got %q", diag.String())
		}
	})

	t.Run("deletes corrupt files and continues", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		corrupt := writeFile(t, dir, "broken.ipynb", `{"cells": [`)
		writeFile(t, dir, "ok.ipynb", goodNotebook)

		var diag bytes.Buffer
		s := New(extract.New(), WithDiagnosticWriter(&diag))

		report, err := s.ScanDirectory(context.Background(), dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := os.Stat(corrupt); !os.IsNotExist(err) {
			t.Error("expected corrupt file to be deleted")
		}
		if want := "removing " + corrupt + "\n"; diag.String() != want {
			t.Errorf("got diagnostic %q, expected %q", diag.String(), want)
		}
		if len(report.RemovedFiles) != 1 {
			t.Fatalf("expected 1 removed file, got %d", len(report.RemovedFiles))
		}
		if report.RemovedFiles[0].Reason != model.ReasonInvalidJSON {
			t.Errorf("got reason %q, expected %q", report.RemovedFiles[0].Reason, model.ReasonInvalidJSON)
		}
		// The healthy file was still processed after the corrupt one.
		if report.URLCount() != 2 {
			t.Errorf("expected 2 URLs from remaining file, got %d", report.URLCount())
		}
	})

	t.Run("deletes files with invalid encoding", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		corrupt := writeFile(t, dir, "binary.ipynb", "{\"cells\": []}\xff\xfe\x00")

		s := New(extract.New(), WithDiagnosticWriter(&bytes.Buffer{}))

		report, err := s.ScanDirectory(context.Background(), dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := os.Stat(corrupt); !os.IsNotExist(err) {
			t.Error("expected undecodable file to be deleted")
		}
		if len(report.RemovedFiles) != 1 || report.RemovedFiles[0].Reason != model.ReasonInvalidEncoding {
			t.Errorf("unexpected removed files: %v", report.RemovedFiles)
		}
	})

	t.Run("tolerates a UTF-8 BOM", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "bom.ipynb", "\xef\xbb\xbf"+goodNotebook)

		s := New(extract.New(), WithDiagnosticWriter(&bytes.Buffer{}))

		report, err := s.ScanDirectory(context.Background(), dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.RemovedFiles) != 0 {
			t.Errorf("BOM-prefixed notebook should not be corrupt: %v", report.RemovedFiles)
		}
		if report.URLCount() != 2 {
			t.Errorf("expected 2 URLs, got %d", report.URLCount())
		}
	})

	t.Run("treats subdirectories as read failures", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		sub := filepath.Join(dir, "nested")
		if err := os.MkdirAll(filepath.Join(sub, "inner"), 0750); err != nil {
			t.Fatal(err)
		}
		writeFile(t, sub, "inner.ipynb", goodNotebook)
		writeFile(t, dir, "ok.ipynb", goodNotebook)

		var diag bytes.Buffer
		s := New(extract.New(), WithDiagnosticWriter(&diag))

		report, err := s.ScanDirectory(context.Background(), dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// The non-empty subdirectory cannot be removed, so it is recorded
		// as kept; the scan itself is unaffected and never recurses.
		if len(report.RemovedFiles) != 1 {
			t.Fatalf("expected 1 removed-file record, got %d", len(report.RemovedFiles))
		}
		rf := report.RemovedFiles[0]
		if rf.Reason != model.ReasonReadFailure {
			t.Errorf("got reason %q, expected %q", rf.Reason, model.ReasonReadFailure)
		}
		if !rf.Kept {
			t.Error("expected non-removable directory to be recorded as kept")
		}
		if !strings.Contains(diag.String(), "removing "+sub) {
			t.Errorf("missing diagnostic for %s: %q", sub, diag.String())
		}
		if report.URLCount() != 2 {
			t.Errorf("expected URLs only from top-level file, got %d", report.URLCount())
		}
	})

	t.Run("keep-corrupt mode leaves files on disk", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		corrupt := writeFile(t, dir, "broken.ipynb", "not json at all")

		var diag bytes.Buffer
		s := New(extract.New(), WithDiagnosticWriter(&diag), WithKeepCorrupt(true))

		report, err := s.ScanDirectory(context.Background(), dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := os.Stat(corrupt); err != nil {
			t.Errorf("expected corrupt file to survive keep mode: %v", err)
		}
		if len(report.RemovedFiles) != 1 || !report.RemovedFiles[0].Kept {
			t.Errorf("unexpected removed files: %v", report.RemovedFiles)
		}
		if !strings.Contains(diag.String(), "removing "+corrupt) {
			t.Errorf("diagnostic still expected in keep mode, got %q", diag.String())
		}
	})

	t.Run("empty directory yields empty report", func(t *testing.T) {
		t.Parallel()

		s := New(extract.New(), WithDiagnosticWriter(&bytes.Buffer{}))

		report, err := s.ScanDirectory(context.Background(), t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.FilesScanned != 0 || report.URLCount() != 0 {
			t.Errorf("expected empty report, got %d files / %d urls",
				report.FilesScanned, report.URLCount())
		}
	})

	t.Run("missing directory is fatal", func(t *testing.T) {
		t.Parallel()

		s := New(extract.New())
		if _, err := s.ScanDirectory(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Error("expected error for missing directory")
		}
	})

	t.Run("cancelled context aborts the pass", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "a.ipynb", goodNotebook)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		s := New(extract.New())
		if _, err := s.ScanDirectory(ctx, dir); err == nil {
			t.Error("expected context error")
		}
	})
}
