package email

import (
	"context"
	"fmt"
	"html"

	"github.com/socialmembrane/authsvc/pkg/otp"
)

// SendOTPParams describes a one-time code message.
type SendOTPParams struct {
	Email       string
	Code        string
	DisplayName string
	Purpose     otp.Purpose
	TTLMinutes  int
}

// SendOTP composes and dispatches a one-time code email for the given
// purpose. The subject and intro line differ per purpose so the user
// can tell a login code from a password reset.
func SendOTP(ctx context.Context, sender EmailSender, params SendOTPParams) error {
	subject, intro := otpCopy(params.Purpose)

	name := params.DisplayName
	if name == "" {
		name = "there"
	}

	body := fmt.Sprintf(otpBodyHTML,
		html.EscapeString(name),
		html.EscapeString(intro),
		html.EscapeString(params.Code),
		params.TTLMinutes,
	)

	return sender.SendEmail(ctx, SendEmailParams{
		SendTo:   params.Email,
		Subject:  subject,
		BodyHTML: body,
		Tag:      "otp-" + string(params.Purpose),
	})
}

func otpCopy(purpose otp.Purpose) (subject, intro string) {
	switch purpose {
	case otp.PurposeLogin:
		return "Your sign-in code", "Use this code to sign in to your account."
	case otp.PurposePasswordReset:
		return "Your password reset code", "Use this code to reset your password."
	default:
		return "Verify your email address", "Use this code to verify your email address."
	}
}

const otpBodyHTML = `<html>
<body style="font-family: sans-serif; color: #1a1a1a;">
<p>Hi %s,</p>
<p>%s</p>
<p style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">%s</p>
<p>The code expires in %d minutes. If you did not request it, you can safely ignore this email.</p>
</body>
</html>`
