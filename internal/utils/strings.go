package utils

import "strings"

// NormalizeName is applied to stop and route names before any lookup or
// uniqueness check: trimmed, single-spaced, lower-cased.
func NormalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// TrimOrEmpty normalizes user input without turning nil into "nil".
func TrimOrEmpty(s string) string {
	return strings.TrimSpace(s)
}
