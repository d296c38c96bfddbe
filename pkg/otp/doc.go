// Package otp implements issuance and verification of one-time codes sent
// by email.
//
// Codes are six decimal digits drawn from a cryptographically secure
// source. They are bcrypt-hashed before persistence; the plaintext exists
// only in the return value of Issue, long enough for the mail dispatch.
//
// At most one live code exists per (user, purpose): issuing a new one
// atomically replaces any prior record, so a resent code always
// invalidates the previous one. Verification is single-use - a true result
// consumes the record, and a stale record discovered during verification
// is deleted on the spot. Callers must not treat Verify as a retryable
// read.
//
// # Usage
//
//	engine := otp.NewEngine(storage, password.NewHasher(), otp.WithTTL(10*time.Minute))
//
//	code, err := engine.Issue(ctx, userID, otp.PurposeVerification)
//	// dispatch code by email; it is never stored in plaintext
//
//	ok, err := engine.Verify(ctx, userID, code, otp.PurposeVerification)
package otp
