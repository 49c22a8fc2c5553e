package sanitizer

import (
	"testing"
)

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty stays empty", "", ""},
		{"e164 passes through", "+919876543210", "+919876543210"},
		{"indian national format", "098765 43210", "+919876543210"},
		{"us number with punctuation", "+1 (212) 555-0173", "+12125550173"},
		{"surrounding whitespace", "  +919876543210  ", "+919876543210"},
		{"free text untouched", "call me later", "call me later"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizePhone(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizePhone(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
