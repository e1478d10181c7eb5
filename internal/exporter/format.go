package exporter

import "fmt"

// formatFloat formats a float64 value for export with exactly 2 decimal
// places, so values like 13.4 appear as 13.40.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int64 value for export
func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}

// formatBool formats a boolean value for export
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
