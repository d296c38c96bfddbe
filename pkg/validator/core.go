package validator

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a single failed rule.
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors collects failed rules across one Apply call.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(ve))
	for _, err := range ve {
		parts = append(parts, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether any error was recorded for the field.
func (ve ValidationErrors) Has(field string) bool {
	for _, err := range ve {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Rule represents a single validation rule.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// Apply executes the rules and returns accumulated errors, or nil when
// everything passed.
func Apply(rules ...Rule) error {
	var ve ValidationErrors
	for _, rule := range rules {
		if !rule.Check() {
			ve = append(ve, rule.Error)
		}
	}
	if len(ve) == 0 {
		return nil
	}
	return ve
}

// ExtractValidationErrors unwraps ValidationErrors from an error chain.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
