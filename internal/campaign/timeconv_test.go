package campaign

import (
	"fmt"
	"testing"
)

func TestTo12Hour(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"morning", "09:30", "9:30 AM"},
		{"noon", "12:00", "12:00 PM"},
		{"midnight", "00:00", "12:00 AM"},
		{"afternoon", "15:00", "3:00 PM"},
		{"last minute", "23:59", "11:59 PM"},
		{"one pm", "13:05", "1:05 PM"},
		{"empty", "", ""},
		{"no colon", "1530", ""},
		{"hour out of range", "24:00", ""},
		{"negative hour", "-1:00", ""},
		{"short minutes", "9:3", ""},
		{"alpha minutes", "09:xx", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := To12Hour(tt.input); got != tt.want {
				t.Errorf("To12Hour(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTo24Hour(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"morning", "9:30 AM", "09:30"},
		{"noon", "12:00 PM", "12:00"},
		{"midnight", "12:00 AM", "00:00"},
		{"afternoon", "3:00 PM", "15:00"},
		{"lowercase", "3:00 pm", "15:00"},
		{"no space", "3:00PM", "15:00"},
		{"extra spaces", "3:00   PM", "15:00"},
		{"embedded", "a las 3:00 PM aprox", "15:00"},
		{"empty", "", ""},
		{"no meridiem", "15:00", ""},
		{"garbage", "pronto", ""},
		{"hour too large", "25:00 PM", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := To24Hour(tt.input); got != tt.want {
				t.Errorf("To24Hour(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Round-tripping any valid 24-hour time through the 12-hour form must give
// back the original value.
func TestTimeConversionRoundTrip(t *testing.T) {
	for h := 0; h < 24; h++ {
		for _, m := range []int{0, 1, 15, 30, 59} {
			hhmm := fmt.Sprintf("%02d:%02d", h, m)
			if got := To24Hour(To12Hour(hhmm)); got != hhmm {
				t.Errorf("round trip of %s gave %s", hhmm, got)
			}
		}
	}
}
