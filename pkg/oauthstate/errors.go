package oauthstate

import "errors"

// ErrStoreFailure wraps backend errors from the Redis-backed manager.
// Memory-backed operations cannot fail.
var ErrStoreFailure = errors.New("oauthstate: store operation failed")
