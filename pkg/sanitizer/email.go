package sanitizer

import (
	"regexp"
	"strings"
)

var dotRegex = regexp.MustCompile(`\.{2,}`)

// NormalizeEmail lowercases, trims and consolidates consecutive dots in
// the local part. Invalid shapes are returned as-is for the validator to
// reject.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	local := dotRegex.ReplaceAllString(parts[0], ".")
	local = strings.Trim(local, ".")

	return local + "@" + parts[1]
}

// EmailDomain returns the domain part of an address, lowercased, or the
// empty string when no single @ is present.
func EmailDomain(email string) string {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(email)), "@")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

// MaskEmail hides the local part for log output while keeping the domain
// recognizable.
func MaskEmail(email string) string {
	parts := strings.Split(strings.TrimSpace(email), "@")
	if len(parts) != 2 || parts[0] == "" {
		return email
	}
	if len(parts[0]) == 1 {
		return "*@" + parts[1]
	}
	return string(parts[0][0]) + strings.Repeat("*", len(parts[0])-1) + "@" + parts[1]
}
