package locale

import "testing"

func TestInferRegionFromPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{"indian number with plus", "+919876543210", "IN"},
		{"indian number without plus", "919876543210", "IN"},
		{"us number with plus", "+12125550173", "US"},
		{"leading whitespace", "  +919876543210", "IN"},
		{"no prefix match", "0501234567", ""},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferRegionFromPhone(tt.phone); got != tt.want {
				t.Errorf("InferRegionFromPhone(%q) = %q, want %q", tt.phone, got, tt.want)
			}
		})
	}
}
