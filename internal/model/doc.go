// Package model defines the core data structures used throughout nbscan.
//
// This package contains the following main types:
//   - Notebook: A leniently-decoded Jupyter notebook document
//   - Cell: A single notebook cell with normalized source lines
//   - ScanReport: The result of scanning one directory
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (scanner, report, database) need to use these
// types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
