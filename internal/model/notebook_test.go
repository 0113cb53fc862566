package model

import (
	"reflect"
	"testing"
)

// TestParseNotebook tests lenient notebook decoding.
func TestParseNotebook(t *testing.T) {
	t.Parallel()

	t.Run("decodes a well-formed notebook", func(t *testing.T) {
		t.Parallel()

		data := []byte(`{
			"cells": [
				{"cell_type": "code", "source": "import pandas as pd\ndf = pd.read_csv('x.csv')"},
				{"cell_type": "markdown", "source": ["# Title"]}
			],
			"nbformat": 4
		}`)

		nb, err := ParseNotebook(data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(nb.Cells) != 2 {
			t.Fatalf("expected 2 cells, got %d", len(nb.Cells))
		}
		if !nb.Cells[0].IsCode() {
			t.Error("expected first cell to be code")
		}
		if nb.Cells[1].IsCode() {
			t.Error("expected second cell to be non-code")
		}
	})

	t.Run("returns error for malformed JSON", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseNotebook([]byte(`{"cells": [`)); err == nil {
			t.Error("expected error for truncated JSON")
		}
	})

	t.Run("returns error for non-JSON bytes", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseNotebook([]byte("PK\x03\x04 not a notebook")); err == nil {
			t.Error("expected error for binary content")
		}
	})

	t.Run("tolerates missing cells field", func(t *testing.T) {
		t.Parallel()

		nb, err := ParseNotebook([]byte(`{"nbformat": 4}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(nb.Cells) != 0 {
			t.Errorf("expected 0 cells, got %d", len(nb.Cells))
		}
	})

	t.Run("tolerates cells of the wrong type", func(t *testing.T) {
		t.Parallel()

		nb, err := ParseNotebook([]byte(`{"cells": 42}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(nb.Cells) != 0 {
			t.Errorf("expected 0 cells, got %d", len(nb.Cells))
		}
	})

	t.Run("tolerates a non-object document", func(t *testing.T) {
		t.Parallel()

		nb, err := ParseNotebook([]byte(`[1, 2, 3]`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(nb.Cells) != 0 {
			t.Errorf("expected 0 cells, got %d", len(nb.Cells))
		}
	})

	t.Run("skips malformed cells but keeps valid ones", func(t *testing.T) {
		t.Parallel()

		data := []byte(`{"cells": [
			{"cell_type": "code", "source": "x = 1"},
			"not a cell",
			{"cell_type": "code", "source": ["y = 2"]}
		]}`)

		nb, err := ParseNotebook(data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(nb.Cells) != 2 {
			t.Errorf("expected 2 cells, got %d", len(nb.Cells))
		}
	})
}

// TestSourceTextUnmarshalJSON tests source normalization.
func TestSourceTextUnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want SourceText
	}{
		{
			name: "single string splits on newline",
			data: `"a = 1\nb = 2"`,
			want: SourceText{"a = 1", "b = 2"},
		},
		{
			name: "string list used as-is",
			data: `["a = 1\n", "b = 2"]`,
			want: SourceText{"a = 1\n", "b = 2"},
		},
		{
			name: "empty string is empty source",
			data: `""`,
			want: nil,
		},
		{
			name: "wrong shape tolerated as empty",
			data: `{"oops": true}`,
			want: nil,
		},
		{
			name: "number tolerated as empty",
			data: `7`,
			want: nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got SourceText
			if err := got.UnmarshalJSON([]byte(tt.data)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, expected %#v", got, tt.want)
			}
		})
	}
}
