package model

import (
	"encoding/json"
	"errors"
	"strings"
)

// CellTypeCode is the cell_type value that marks a cell as executable code.
// Only code cells are scanned for dataset URLs; markdown and raw cells are
// ignored even when they contain matching text.
const CellTypeCode = "code"

// Notebook is a leniently-decoded Jupyter notebook document.
//
// Design decision: We tolerate every structural deviation short of broken
// JSON syntax. Notebooks in the wild are frequently hand-edited or produced
// by old nbformat versions: a missing "cells" field, a "cells" field of the
// wrong type, or malformed individual cells all decode to an empty or
// partial cell list rather than an error. Only syntactically invalid JSON
// is reported as an error, because that is the signal the scanner uses to
// classify a file as corrupt.
type Notebook struct {
	// Cells is the ordered cell list. Empty when the document has no
	// usable "cells" field.
	Cells []Cell `json:"cells"`
}

// Cell is a single notebook cell.
type Cell struct {
	// CellType distinguishes code cells from markdown/raw cells.
	CellType string `json:"cell_type"`

	// Source holds the cell's source text, normalized to one line per
	// element at decode time.
	Source SourceText `json:"source"`
}

// IsCode reports whether the cell is an executable code cell.
func (c Cell) IsCode() bool {
	return c.CellType == CellTypeCode
}

// SourceText is a cell source normalized to an ordered slice of lines.
//
// The nbformat schema allows "source" to be either a single string or a
// list of strings (one per line, trailing newlines optional). Normalizing
// at decode time means all downstream logic sees exactly one shape.
type SourceText []string

// UnmarshalJSON decodes a notebook cell source, accepting both the single
// string and string-list encodings. A single string is split on "\n"; a
// list is taken as-is. Any other shape decodes to an empty source.
func (s *SourceText) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*s = nil
			return nil
		}
		*s = strings.Split(single, "\n")
		return nil
	}

	var lines []string
	if err := json.Unmarshal(data, &lines); err == nil {
		*s = lines
		return nil
	}

	// Wrong shape (number, object, mixed list). Tolerate as empty.
	*s = nil
	return nil
}

// MarshalJSON encodes the normalized source as a line list, matching the
// most common nbformat on-disk representation.
func (s SourceText) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(s))
}

// ParseNotebook decodes raw notebook bytes.
//
// It returns an error only for malformed JSON syntax. Structural surprises
// (non-object document, "cells" of the wrong type, malformed cells) are
// tolerated and produce a notebook with zero or fewer cells, per the
// no-schema-validation contract.
func ParseNotebook(data []byte) (*Notebook, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// Valid JSON, just not an object (e.g. a bare array).
			return &Notebook{}, nil
		}
		return nil, err
	}

	rawCells, ok := doc["cells"]
	if !ok {
		return &Notebook{}, nil
	}

	var cellDocs []json.RawMessage
	if err := json.Unmarshal(rawCells, &cellDocs); err != nil {
		return &Notebook{}, nil
	}

	nb := &Notebook{Cells: make([]Cell, 0, len(cellDocs))}
	for _, raw := range cellDocs {
		var cell Cell
		if err := json.Unmarshal(raw, &cell); err != nil {
			continue
		}
		nb.Cells = append(nb.Cells, cell)
	}
	return nb, nil
}
