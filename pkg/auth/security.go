package auth

import (
	"strings"

	"github.com/socialmembrane/authsvc/pkg/sanitizer"
)

// Throwaway inbox providers. Signups from these are refused outright;
// OTP requests for them burn budget without sending mail.
var disposableEmailDomains = map[string]struct{}{
	"tempmail.org":      {},
	"10minutemail.com":  {},
	"guerrillamail.com": {},
	"mailinator.com":    {},
	"sharklasers.com":   {},
	"throwawaymail.com": {},
	"yopmail.com":       {},
	"temp-mail.org":     {},
	"getnada.com":       {},
	"fakeinbox.com":     {},
}

var botUserAgentMarkers = []string{"bot", "crawler", "spider", "scraper"}

// isSuspiciousRequest applies cheap heuristics before any store access.
// It is not a bot defense, just a filter for the laziest abuse.
func isSuspiciousRequest(email, userAgent string) bool {
	if _, ok := disposableEmailDomains[sanitizer.EmailDomain(email)]; ok {
		return true
	}
	ua := strings.ToLower(userAgent)
	for _, marker := range botUserAgentMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}
