package utils

import (
	"strings"
)

// TrimOrEmpty normalizes user input without turning nil into "nil".
func TrimOrEmpty(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeCoach uppercases and trims a coach label ("b2 " -> "B2").
func NormalizeCoach(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeCode uppercases and trims a station or class code.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
