package utils

import "strings"

// TruncateForLog flattens s to a single line and shortens it to limit runes,
// appending an ellipsis when something was cut.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// ValueOr returns the trimmed value or fallback when the value is blank.
func ValueOr(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
