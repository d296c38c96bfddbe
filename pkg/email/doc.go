// Package email delivers transactional mail for the auth flows, most
// importantly one-time codes.
//
// The EmailSender interface is the only thing the orchestrator depends
// on. Production uses the Postmark-backed sender; local development uses
// DevSender, which writes messages to disk instead of sending them.
//
// A failed dispatch surfaces as an error to the caller but does not roll
// back OTP issuance; the code stays valid until it expires and the user
// can request a resend.
package email
