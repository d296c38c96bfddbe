package tokens

import "errors"

var (
	// ErrMissingSecret is returned when the service is constructed without a signing secret.
	ErrMissingSecret = errors.New("tokens: signing secret is required")

	// ErrInvalidConfig is returned for non-positive TTL configuration.
	ErrInvalidConfig = errors.New("tokens: invalid token TTL configuration")

	// ErrInvalidToken covers signature mismatch, malformed structure and
	// expired claims alike. Callers must not be able to tell these apart.
	ErrInvalidToken = errors.New("tokens: invalid or expired token")
)
