package email

import (
	"context"
	"fmt"
	"regexp"
)

// EmailSender represents an interface for sending emails.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams represents the parameters for sending an email.
type SendEmailParams struct {
	SendTo   string `json:"send_to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	Tag      string `json:"tag,omitempty"`
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validate checks that the parameters describe a sendable message.
func (p SendEmailParams) Validate() error {
	if !emailRegex.MatchString(p.SendTo) {
		return fmt.Errorf("%w: recipient must be a valid email address", ErrInvalidParams)
	}
	if p.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidParams)
	}
	if p.BodyHTML == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidParams)
	}
	return nil
}
