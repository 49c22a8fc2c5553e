package sanitizer

import (
	"testing"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"only whitespace", "   \t\n  ", ""},
		{"leading and trailing spaces", "  persistent cough  ", "persistent cough"},
		{"internal whitespace runs", "chest   pain\tand\n\nfever", "chest pain and fever"},
		{"already clean", "routine checkup", "routine checkup"},
		{"unicode content preserved", "बुखार और सिरदर्द", "बुखार और सिरदर्द"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.expected {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeEnumField(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Consultation", "consultation"},
		{"  FOLLOW_UP ", "follow_up"},
		{"emergency", "emergency"},
		{"", ""},
	}

	for _, tt := range tests {
		got := SanitizeEnumField(tt.input)
		if got != tt.expected {
			t.Errorf("SanitizeEnumField(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestPipeline_AppliesInOrder(t *testing.T) {
	p := Pipeline{
		func(s string) string { return s + "b" },
		func(s string) string { return s + "c" },
	}

	if got := p.Apply("a"); got != "abc" {
		t.Errorf("Apply(%q) = %q, want %q", "a", got, "abc")
	}
}
