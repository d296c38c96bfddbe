// Package validator provides rule-based validation for the fields the
// auth flows accept from the outside: email addresses, passwords and
// one-time codes.
//
// Rules are composed with Apply, which collects every failing rule into a
// ValidationErrors value:
//
//	err := validator.Apply(
//		validator.ValidEmail("email", email),
//		validator.StrongPassword("password", password, validator.DefaultPasswordStrength()),
//	)
//
// A nil result means all rules passed. ValidationErrors implements error
// and keeps per-field messages for the transport layer to render.
package validator
