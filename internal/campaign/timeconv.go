package campaign

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// time12Pattern is the recovery pattern for manually edited 12-hour strings.
var time12Pattern = regexp.MustCompile(`(?i)(\d+):(\d+)\s*(AM|PM)`)

// To12Hour converts a 24-hour "HH:MM" string to the canonical
// "H:MM AM/PM" form. Hour 0 maps to 12 AM, hour 12 stays 12 PM.
// Malformed input yields "".
func To12Hour(hhmm string) string {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return ""
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return ""
	}
	min := parts[1]
	if len(min) != 2 {
		return ""
	}
	if _, err := strconv.Atoi(min); err != nil {
		return ""
	}

	ampm := "AM"
	if h >= 12 {
		ampm = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%s %s", h12, min, ampm)
}

// To24Hour converts a "H:MM AM/PM" string back to zero-padded 24-hour
// "HH:MM" form. A string that does not match the 12-hour pattern yields ""
// so a manually broken value never propagates; the stored 12-hour value
// stays untouched until the user corrects it.
func To24Hour(hora string) string {
	m := time12Pattern.FindStringSubmatch(hora)
	if m == nil {
		return ""
	}
	h, err := strconv.Atoi(m[1])
	if err != nil {
		return ""
	}
	switch strings.ToUpper(m[3]) {
	case "PM":
		if h < 12 {
			h += 12
		}
	case "AM":
		if h == 12 {
			h = 0
		}
	}
	if h > 23 {
		return ""
	}
	return fmt.Sprintf("%02d:%s", h, m[2])
}
