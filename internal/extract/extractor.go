// Package extract implements line-level extraction of dataset URLs from
// notebook source code.
//
// Extraction is deliberately cheap: two substring pre-checks gate a single
// regular expression, so the common case (a line with no loader call) costs
// two strings.Contains calls and nothing else.
package extract

import (
	"regexp"
	"strings"

	"github.com/nbscan/nbscan/internal/model"
)

// DefaultMarker is the loader-call substring a line must contain before
// URL extraction is attempted.
const DefaultMarker = "pd.read_csv"

// urlPattern captures text starting at http:// or https:// and ending just
// before the next quote character, non-greedy. Only the first match on a
// line is taken, so a line yields at most one URL.
var urlPattern = regexp.MustCompile(`(https?://.+?)['"]`)

// Extractor extracts dataset URLs from notebook code lines.
type Extractor struct {
	// markers are the loader-call substrings that qualify a line for
	// extraction. A line qualifies if it contains any of them.
	markers []string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMarkers replaces the default loader markers.
// Empty markers are dropped; if none remain, the default is kept.
func WithMarkers(markers ...string) Option {
	return func(e *Extractor) {
		cleaned := make([]string, 0, len(markers))
		for _, m := range markers {
			if m != "" {
				cleaned = append(cleaned, m)
			}
		}
		if len(cleaned) > 0 {
			e.markers = cleaned
		}
	}
}

// New creates an Extractor. Without options it matches lines containing
// DefaultMarker.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		markers: []string{DefaultMarker},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Markers returns the configured loader markers.
func (e *Extractor) Markers() []string {
	return e.markers
}

// ExtractLine extracts the first dataset URL from a single source line.
// It returns false when the line has no loader marker, no http(s) scheme,
// or no quote-terminated URL. A scheme with no terminating quote is a miss,
// not an error.
func (e *Extractor) ExtractLine(line string) (string, bool) {
	if !e.hasMarker(line) {
		return "", false
	}
	if !strings.Contains(line, "https://") && !strings.Contains(line, "http://") {
		return "", false
	}

	m := urlPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractCell extracts all dataset URLs from a code cell, one per matching
// line, in source order. Non-code cells and empty sources yield nothing.
func (e *Extractor) ExtractCell(cell model.Cell) []string {
	if !cell.IsCode() || len(cell.Source) == 0 {
		return nil
	}

	var urls []string
	for _, line := range cell.Source {
		if url, ok := e.ExtractLine(line); ok {
			urls = append(urls, url)
		}
	}
	return urls
}

// hasMarker reports whether the line contains any configured loader marker.
func (e *Extractor) hasMarker(line string) bool {
	for _, m := range e.markers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}
