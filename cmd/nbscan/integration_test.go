package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
)

// useTempXDGHome points the XDG data directory at a temp directory so
// integration tests never touch the user's real scan history database.
func useTempXDGHome(t *testing.T) {
	t.Helper()

	t.Setenv("XDG_DATA_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)
}

// writeNotebook writes a notebook fixture into dir.
func writeNotebook(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write notebook %s: %v", name, err)
	}
	return path
}

// TestScanCommandEndToEnd runs the full scan command against a fixture
// directory containing good and corrupt notebooks.
func TestScanCommandEndToEnd(t *testing.T) {
	useTempXDGHome(t)

	dir := t.TempDir()
	writeNotebook(t, dir, "first.ipynb", `{
  "cells": [
    {
      "cell_type": "code",
      "source": ["df = pd.read_csv('https://example.com/b.csv')\n"]
    },
    {
      "cell_type": "markdown",
      "source": ["see https://example.com/ignored.csv with pd.read_csv\n"]
    }
  ]
}`)
	writeNotebook(t, dir, "second.ipynb", `{
  "cells": [
    {
      "cell_type": "code",
      "source": "data = pd.read_csv(\"https://example.com/a.csv\")\n"
    },
    {
      "cell_type": "code",
      "source": ["df = pd.read_csv('https://example.com/b.csv')\n"]
    }
  ]
}`)
	corruptPath := writeNotebook(t, dir, "broken.ipynb", `{"cells": [`)

	outputFile := filepath.Join(t.TempDir(), "urls.txt")

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"scan", "-o", outputFile, dir})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("scan command failed: %v", err)
	}

	// URL list is deduplicated and sorted
	content, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatalf("failed to read URL file: %v", err)
	}
	want := "https://example.com/a.csv\nhttps://example.com/b.csv\n"
	if string(content) != want {
		t.Errorf("URL file content = %q, want %q", string(content), want)
	}

	// Corrupt notebook was deleted
	if _, err := os.Stat(corruptPath); !os.IsNotExist(err) {
		t.Error("expected corrupt notebook to be deleted")
	}
}

// TestScanCommandKeepCorrupt runs the scan command with --keep-corrupt
// and verifies corrupt notebooks survive on disk.
func TestScanCommandKeepCorrupt(t *testing.T) {
	useTempXDGHome(t)

	dir := t.TempDir()
	corruptPath := writeNotebook(t, dir, "broken.ipynb", `not json at all`)

	outputFile := filepath.Join(t.TempDir(), "urls.txt")

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"scan", "--keep-corrupt", "-o", outputFile, dir})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("scan command failed: %v", err)
	}

	if _, err := os.Stat(corruptPath); err != nil {
		t.Errorf("expected corrupt notebook to survive, got %v", err)
	}
}

// TestScanThenCompareEndToEnd runs two scans and compares the recorded
// history through the compare command.
func TestScanThenCompareEndToEnd(t *testing.T) {
	useTempXDGHome(t)

	dir := t.TempDir()
	writeNotebook(t, dir, "first.ipynb", `{
  "cells": [
    {
      "cell_type": "code",
      "source": ["df = pd.read_csv('https://example.com/a.csv')\n"]
    }
  ]
}`)

	outputFile := filepath.Join(t.TempDir(), "urls.txt")

	scanOnce := func() {
		t.Helper()
		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{"scan", "-o", outputFile, dir})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("scan command failed: %v", err)
		}
	}

	scanOnce()

	// Second scan sees one more notebook
	writeNotebook(t, dir, "second.ipynb", `{
  "cells": [
    {
      "cell_type": "code",
      "source": ["df = pd.read_csv('https://example.com/b.csv')\n"]
    }
  ]
}`)
	scanOnce()

	compareCmd := NewRootCmd()
	compareCmd.SetArgs([]string{"compare", dir})
	if err := compareCmd.Execute(); err != nil {
		t.Fatalf("compare command failed: %v", err)
	}

	listCmd := NewRootCmd()
	listCmd.SetArgs([]string{"compare", "--list", dir})
	if err := listCmd.Execute(); err != nil {
		t.Fatalf("compare --list failed: %v", err)
	}

	listDirsCmd := NewRootCmd()
	listDirsCmd.SetArgs([]string{"compare", "--list-dirs"})
	if err := listDirsCmd.Execute(); err != nil {
		t.Fatalf("compare --list-dirs failed: %v", err)
	}
}
