// Package config provides configuration structures and utilities for nbscan.
// It defines the main options for scanning notebook directories, extraction
// rules, and report generation preferences.
package config
