package utils

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeString trims whitespace and normalizes string input
func NormalizeString(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeEmail normalizes email addresses (lowercase and trim)
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail checks for a single @ followed by a dotted domain.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(NormalizeEmail(email))
}

// IsBlank reports whether s is empty after trimming.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
