package exporter

import (
	"strconv"
)

// formatFloat formats a value with the fewest digits that round-trip, so
// 13.4 stays "13.4" and 12.0 becomes "12".
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatOptFloat formats an optional measurement; nil becomes an empty cell.
func formatOptFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

// formatOptInt formats an optional index; nil becomes an empty cell.
func formatOptInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
