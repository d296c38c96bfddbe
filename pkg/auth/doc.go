// Package auth orchestrates the authentication flows: registration,
// OTP request and verification, password login, token refresh, logout
// and OAuth federation.
//
// The Service sequences the supporting packages (otp, tokens, password,
// ratelimiter, oauthstate, email) and enforces fail-closed ordering:
// rate limits are checked before any store access, attempts are recorded
// on every terminal path, and unknown-account paths answer exactly like
// failed-credential paths so callers cannot enumerate users.
//
// Storage is consumer-declared: the Service depends on the UserStorage
// and TokenDenylist interfaces defined here, and implementations live
// with the caller (see internal/storage/postgres).
//
// All failures map to the sentinel errors in errors.go. Handlers match
// with errors.Is and errors.As; raw storage or provider error text never
// crosses the package boundary.
package auth
