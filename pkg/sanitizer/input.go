package sanitizer

import (
	"strings"
	"unicode"
)

// RemoveNullBytes removes null bytes from the input.
func RemoveNullBytes(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}

// RemoveControlChars drops control characters except tab, CR and LF.
func RemoveControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// LimitLength truncates input to maxLength runes.
func LimitLength(s string, maxLength int) string {
	if maxLength <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	return string(runes[:maxLength])
}

// UserInput applies the standard sanitation pipeline for short free-form
// fields such as OTP codes and display names.
func UserInput(s string, maxLength int) string {
	s = RemoveNullBytes(s)
	s = RemoveControlChars(s)
	s = strings.TrimSpace(s)
	return LimitLength(s, maxLength)
}
