package ratelimiter

import "errors"

var (
	// ErrInvalidPolicy is returned for non-positive attempt caps or windows.
	ErrInvalidPolicy = errors.New("ratelimiter: invalid policy configuration")

	// ErrStoreFailure wraps backend errors from Redis-backed stores.
	ErrStoreFailure = errors.New("ratelimiter: store operation failed")
)
