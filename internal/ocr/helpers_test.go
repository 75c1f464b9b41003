package ocr

import "testing"

func TestFlattenText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Newlines become spaces", "MYKAD\n901231-08-5678\nAHMAD", "MYKAD 901231-08-5678 AHMAD"},
		{"Surrounding whitespace trimmed", "\n  text  \n", "text"},
		{"Empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FlattenText(tt.input); got != tt.expected {
				t.Errorf("FlattenText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		n        int
		expected string
	}{
		{"Short text unchanged", "hello", 10, "hello"},
		{"Long text truncated", "hello world", 5, "hello"},
		{"Exact length unchanged", "hello", 5, "hello"},
		{"Multibyte runes kept intact", "héllo wörld", 6, "héllo "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Excerpt(tt.input, tt.n); got != tt.expected {
				t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.expected)
			}
		})
	}
}
