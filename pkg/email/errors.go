package email

import "errors"

var (
	ErrFailedToSendEmail = errors.New("email: failed to send email")
	ErrInvalidConfig     = errors.New("email: invalid sender configuration")
	ErrInvalidParams     = errors.New("email: invalid send parameters")
)
