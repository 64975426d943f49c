package campaign

import "testing"

func TestDisplayDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"january", "2026-01-13", "ENERO - 13"},
		{"december", "2025-12-31", "DICIEMBRE - 31"},
		{"september", "2026-09-01", "SEPTIEMBRE - 01"},
		{"empty", "", ""},
		{"two parts", "2026-01", "2026-01"},
		{"month zero", "2026-00-13", "2026-00-13"},
		{"month thirteen", "2026-13-13", "2026-13-13"},
		{"alpha month", "2026-xx-13", "2026-xx-13"},
		{"free text", "mañana", "mañana"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayDate(tt.input); got != tt.want {
				t.Errorf("DisplayDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
