package campaign

import (
	"strconv"
	"strings"
)

// Spanish month names, uppercased for the display form.
var monthNames = [12]string{
	"ENERO", "FEBRERO", "MARZO", "ABRIL", "MAYO", "JUNIO",
	"JULIO", "AGOSTO", "SEPTIEMBRE", "OCTUBRE", "NOVIEMBRE", "DICIEMBRE",
}

// DisplayDate converts an ISO "YYYY-MM-DD" date into the display form
// "MONTHNAME - DD" (e.g. "2026-01-13" -> "ENERO - 13"). Input that cannot
// be parsed is returned unchanged.
func DisplayDate(fecha string) string {
	if fecha == "" {
		return ""
	}
	parts := strings.Split(fecha, "-")
	if len(parts) != 3 {
		return fecha
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return fecha
	}
	return monthNames[month-1] + " - " + parts[2]
}
