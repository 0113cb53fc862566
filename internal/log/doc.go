// Package log provides logging utilities for nbscan.
//
// The TruncateHandler wraps any slog.Handler and caps the length of string
// attribute values. Notebook source lines and file paths can be arbitrarily
// long, and a single pathological cell should not flood the log output.
package log
