// Package sanitizer normalizes untrusted input before it reaches the auth
// flows.
//
// Every external identifier is sanitized at the orchestrator boundary:
// emails are trimmed, lowercased and dot-consolidated so that the unique
// index on the users table sees one canonical form, and free-form input is
// stripped of null bytes and control sequences. Sanitization never
// rejects - validation is the validator package's job.
package sanitizer
