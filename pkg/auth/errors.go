package auth

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidInput covers malformed emails, codes and passwords.
	ErrInvalidInput = errors.New("auth: invalid input")

	// ErrInvalidCredentials is deliberately generic. It covers unknown
	// user, wrong password and wrong or expired OTP so responses cannot
	// be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrUnauthorized covers invalid, expired and revoked tokens.
	ErrUnauthorized = errors.New("auth: unauthorized")

	// ErrConflict covers duplicate registration. The message stays
	// generic rather than confirming the email is taken.
	ErrConflict = errors.New("auth: conflict")

	// ErrForbidden covers inactive and unverified account gating.
	ErrForbidden = errors.New("auth: forbidden")

	// ErrRateLimited is the match target for RateLimitedError.
	ErrRateLimited = errors.New("auth: rate limited")

	// ErrUpstreamFailure is the match target for UpstreamError.
	ErrUpstreamFailure = errors.New("auth: upstream failure")

	// ErrInternal covers unexpected failures. Detail is logged
	// server-side and never returned to the caller.
	ErrInternal = errors.New("auth: internal error")

	// ErrOAuthNotConfigured is returned by the OAuth flows when no
	// provider adapter was wired in.
	ErrOAuthNotConfigured = errors.New("auth: oauth provider not configured")
)

// Storage sentinels. Implementations of UserStorage translate their
// store's errors into these.
var (
	ErrUserNotFound = errors.New("auth: user not found")
	ErrEmailTaken   = errors.New("auth: email already taken")
)

// RateLimitedError reports a rejected attempt and when to retry.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("auth: rate limited, retry after %s", e.RetryAfter)
}

func (e *RateLimitedError) Unwrap() error { return ErrRateLimited }

// UpstreamCause classifies a provider failure so the transport layer can
// pick between 502-style and 400-style responses.
type UpstreamCause string

const (
	UpstreamBadRequest     UpstreamCause = "bad_request"
	UpstreamProviderOutage UpstreamCause = "provider_outage"
	UpstreamNetwork        UpstreamCause = "network"
)

// UpstreamError reports an OAuth provider failure with its cause.
type UpstreamError struct {
	Cause UpstreamCause
	Err   error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: upstream failure (%s): %v", e.Cause, e.Err)
	}
	return fmt.Sprintf("auth: upstream failure (%s)", e.Cause)
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUpstreamFailure, e.Err}
	}
	return []error{ErrUpstreamFailure}
}
