package identity

import "testing"

func TestNormalizeTyped(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Hyphen-segmented form", "901231-08-5678", "901231085678"},
		{"Contiguous digits", "901231085678", "901231085678"},
		{"Spaces and noise", " 901231 08 5678 ", "901231085678"},
		{"Empty input", "", ""},
		{"No digits", "abc-def", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTyped(tt.input); got != tt.expected {
				t.Errorf("NormalizeTyped(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtractFromText(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		expected   string
		expectedOK bool
	}{
		{
			name:       "Contiguous run embedded in OCR noise",
			text:       "MYKAD\nNAMA PENUH\n...901231085678...",
			expected:   "901231085678",
			expectedOK: true,
		},
		{
			name:       "Hyphen-segmented form",
			text:       "IC: 901231-08-5678 issued",
			expected:   "901231085678",
			expectedOK: true,
		},
		{
			name:       "First match wins over later candidates",
			text:       "111111-11-1111 then 222222-22-2222",
			expected:   "111111111111",
			expectedOK: true,
		},
		{
			name:       "No 12-digit run",
			text:       "no identity number here, only 12345",
			expectedOK: false,
		},
		{
			name:       "Empty text",
			text:       "",
			expectedOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractFromText(tt.text)
			if ok != tt.expectedOK {
				t.Fatalf("ExtractFromText(%q) ok = %v, want %v", tt.text, ok, tt.expectedOK)
			}
			if !ok {
				return
			}
			if got != tt.expected {
				t.Errorf("ExtractFromText(%q) = %q, want %q", tt.text, got, tt.expected)
			}
			if len(got) != CanonicalDigits {
				t.Errorf("Extracted identifier has %d digits, want %d", len(got), CanonicalDigits)
			}
		})
	}
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"Uppercase name line", "MYKAD\nAHMAD BIN ABU\n901231085678", "AHMAD BIN ABU"},
		{"Skips short uppercase lines", "KAD\nSITI AMINAH BINTI ALI", "SITI AMINAH BINTI ALI"},
		{"No uppercase line", "just lowercase text\nhere", ""},
		{"Digits-only line is not a name", "123456789012\nWARGANEGARA", "WARGANEGARA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractName(tt.text); got != tt.expected {
				t.Errorf("ExtractName(%q) = %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{"Identical names", "AHMAD BIN ABU", "AHMAD BIN ABU", 1.0, 1.0},
		{"Case-insensitive", "ahmad bin abu", "AHMAD BIN ABU", 1.0, 1.0},
		{"Single-character OCR slip", "AHMAD BIN ABU", "AHMAD 8IN ABU", 0.9, 0.99},
		{"Unrelated names", "AHMAD BIN ABU", "XVQZW KPLRTY MNO", 0.0, 0.4},
		{"Empty side", "", "AHMAD", 0.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NameSimilarity(tt.a, tt.b)
			if got < tt.min || got > tt.max {
				t.Errorf("NameSimilarity(%q, %q) = %f, want in [%f, %f]", tt.a, tt.b, got, tt.min, tt.max)
			}
		})
	}
}
