package validator

import (
	"regexp"
	"strings"
)

var (
	uppercaseRegex   = regexp.MustCompile(`[A-Z]`)
	lowercaseRegex   = regexp.MustCompile(`[a-z]`)
	digitRegex       = regexp.MustCompile(`[0-9]`)
	specialCharRegex = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// commonPasswords is a short denylist of the most frequently breached
// passwords. Checked case-insensitively.
var commonPasswords = map[string]bool{
	"password":    true,
	"password1":   true,
	"password123": true,
	"123456":      true,
	"12345678":    true,
	"123456789":   true,
	"qwerty":      true,
	"qwerty123":   true,
	"abc123":      true,
	"letmein":     true,
	"welcome":     true,
	"welcome1":    true,
	"iloveyou":    true,
	"admin":       true,
	"monkey":      true,
	"dragon":      true,
	"sunshine":    true,
	"princess":    true,
	"football":    true,
	"baseball":    true,
}

// PasswordStrengthConfig controls the StrongPassword rule.
type PasswordStrengthConfig struct {
	MinLength      int
	MaxLength      int
	MinCharClasses int // distinct classes among upper/lower/digit/special
}

// DefaultPasswordStrength returns the policy used for account passwords:
// 8-128 characters spanning at least three character classes.
func DefaultPasswordStrength() PasswordStrengthConfig {
	return PasswordStrengthConfig{
		MinLength:      8,
		MaxLength:      128,
		MinCharClasses: 3,
	}
}

// StrongPassword validates length and character-class diversity.
func StrongPassword(field, value string, config PasswordStrengthConfig) Rule {
	return Rule{
		Check: func() bool {
			if len(value) < config.MinLength || len(value) > config.MaxLength {
				return false
			}

			classes := 0
			if uppercaseRegex.MatchString(value) {
				classes++
			}
			if lowercaseRegex.MatchString(value) {
				classes++
			}
			if digitRegex.MatchString(value) {
				classes++
			}
			if specialCharRegex.MatchString(value) {
				classes++
			}
			return classes >= config.MinCharClasses
		},
		Error: ValidationError{
			Field:   field,
			Message: "password does not meet strength requirements",
		},
	}
}

// NotCommonPassword rejects passwords from the breach denylist.
func NotCommonPassword(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return !commonPasswords[strings.ToLower(value)]
		},
		Error: ValidationError{
			Field:   field,
			Message: "password is too common, please choose a different one",
		},
	}
}
