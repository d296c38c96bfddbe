package otp

import "errors"

var (
	// ErrRecordNotFound must be returned by Storage implementations when no
	// live record exists for a (user, purpose) pair.
	ErrRecordNotFound = errors.New("otp: record not found")

	// ErrInvalidPurpose is returned for purposes outside the known set.
	ErrInvalidPurpose = errors.New("otp: invalid purpose")
)
