package validator

import (
	"net/mail"
	"regexp"
	"strings"
)

var otpCodeRegex = regexp.MustCompile(`^\d{6}$`)

// ValidEmail validates that a string is a usable email address.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if strings.TrimSpace(value) == "" {
				return false
			}

			addr, err := mail.ParseAddress(value)
			if err != nil {
				return false
			}

			// mail.ParseAddress accepts domains without dots; web signups
			// need a fully qualified domain.
			parts := strings.Split(addr.Address, "@")
			if len(parts) != 2 || parts[0] == "" {
				return false
			}
			domain := parts[1]
			if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
				return false
			}
			for part := range strings.SplitSeq(domain, ".") {
				if part == "" {
					return false
				}
			}
			return true
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be a valid email address",
		},
	}
}

// ValidOTPCode validates that a string is exactly six decimal digits.
func ValidOTPCode(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return otpCodeRegex.MatchString(value)
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be a 6-digit code",
		},
	}
}
