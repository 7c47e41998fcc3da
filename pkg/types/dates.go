package types

import (
	"strings"
	"time"
)

// Legacy order fields carry Brazilian-formatted date strings. The layouts
// below match what the spreadsheet exports produce.
const (
	DateLayout     = "02/01/2006"
	DateTimeLayout = "02/01/2006 15:04"
)

// FormatDate renders t as DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatDateTime renders t as DD/MM/YYYY HH:MM.
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// ParseBRDate parses a DD/MM/YYYY value, tolerating a trailing time-of-day
// suffix. Returns false for empty or malformed input.
func ParseBRDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	if len(trimmed) > len(DateLayout) {
		trimmed = trimmed[:len(DateLayout)]
	}
	parsed, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
