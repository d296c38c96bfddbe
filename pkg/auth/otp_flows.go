package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/socialmembrane/authsvc/pkg/email"
	"github.com/socialmembrane/authsvc/pkg/logger"
	"github.com/socialmembrane/authsvc/pkg/otp"
	"github.com/socialmembrane/authsvc/pkg/sanitizer"
	"github.com/socialmembrane/authsvc/pkg/validator"
)

// RequestOTPParams carries the OTP issuance input.
type RequestOTPParams struct {
	Email     string
	Purpose   otp.Purpose
	UserAgent string
}

// VerifyOTPParams carries the OTP verification input.
type VerifyOTPParams struct {
	Email   string
	Code    string
	Purpose otp.Purpose
}

// RequestOTP issues a one-time code and dispatches it by email. For
// unknown addresses it records the attempt and reports success without
// sending anything, so the response shape never reveals whether an
// account exists.
func (s *Service) RequestOTP(ctx context.Context, params RequestOTPParams) error {
	emailAddr := sanitizer.NormalizeEmail(params.Email)
	if err := validator.Apply(validator.ValidEmail("email", emailAddr)); err != nil {
		return errors.Join(ErrInvalidInput, err)
	}
	if !params.Purpose.Valid() {
		return errors.Join(ErrInvalidInput, otp.ErrInvalidPurpose)
	}

	key := otpRequestKey(emailAddr)
	if err := s.checkLimit(ctx, key, s.otpRequestPolicy); err != nil {
		return err
	}
	s.recordAttempt(ctx, key)

	if isSuspiciousRequest(emailAddr, params.UserAgent) {
		s.logger.WarnContext(ctx, "suspicious otp request dropped",
			logger.Component("auth"), logger.Email(sanitizer.MaskEmail(emailAddr)))
		return nil
	}

	user, err := s.users.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Indistinguishable from the sent case.
			return nil
		}
		s.logger.ErrorContext(ctx, "failed to load user",
			logger.Component("auth"), logger.Error(err))
		return ErrInternal
	}

	code, err := s.codes.Issue(ctx, user.ID, params.Purpose)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to issue otp",
			logger.Component("auth"), logger.UserID(user.ID), logger.Error(err))
		return ErrInternal
	}

	// The record stays valid if dispatch fails; a resend replaces it.
	if err := email.SendOTP(ctx, s.mailer, email.SendOTPParams{
		Email:       user.Email,
		Code:        code,
		DisplayName: user.FullName,
		Purpose:     params.Purpose,
		TTLMinutes:  int(s.codes.TTL().Minutes()),
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to send otp email",
			logger.Component("auth"), logger.UserID(user.ID), logger.Error(err))
		return ErrInternal
	}

	s.logger.InfoContext(ctx, "otp dispatched",
		logger.Component("auth"),
		logger.UserID(user.ID),
		logger.Email(sanitizer.MaskEmail(user.Email)),
	)
	return nil
}

// ResendOTP replaces any live code for the purpose with a fresh one.
// It shares RequestOTP's budget and anti-enumeration behavior.
func (s *Service) ResendOTP(ctx context.Context, params RequestOTPParams) error {
	return s.RequestOTP(ctx, params)
}

// VerifyOTP checks a code and completes the flow for its purpose:
// verification marks the account verified and signs the user in,
// login just signs in, password_reset returns a confirmation with no
// tokens. A true verification is single-use; the code is consumed.
func (s *Service) VerifyOTP(ctx context.Context, params VerifyOTPParams) (*AuthResult, error) {
	emailAddr := sanitizer.NormalizeEmail(params.Email)
	code := sanitizer.UserInput(params.Code, 6)

	if err := validator.Apply(
		validator.ValidEmail("email", emailAddr),
		validator.ValidOTPCode("code", code),
	); err != nil {
		return nil, errors.Join(ErrInvalidInput, err)
	}
	if !params.Purpose.Valid() {
		return nil, errors.Join(ErrInvalidInput, otp.ErrInvalidPurpose)
	}

	key := otpVerifyKey(emailAddr)
	if err := s.checkLimit(ctx, key, s.otpVerifyPolicy); err != nil {
		return nil, err
	}
	s.recordAttempt(ctx, key)

	user, err := s.users.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.delayFailure(ctx)
			return nil, ErrInvalidCredentials
		}
		s.logger.ErrorContext(ctx, "failed to load user",
			logger.Component("auth"), logger.Error(err))
		return nil, ErrInternal
	}

	ok, err := s.codes.Verify(ctx, user.ID, code, params.Purpose)
	if err != nil {
		s.logger.ErrorContext(ctx, "otp verification failed",
			logger.Component("auth"), logger.UserID(user.ID), logger.Error(err))
		return nil, ErrInternal
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if params.Purpose == otp.PurposeVerification && !user.IsVerified {
		user.IsVerified = true
		user.UpdatedAt = time.Now()
		if err := s.users.UpdateUser(ctx, user); err != nil {
			s.logger.ErrorContext(ctx, "failed to mark user verified",
				logger.Component("auth"), logger.UserID(user.ID), logger.Error(err))
			return nil, ErrInternal
		}
	}

	// A password-reset code only proves control of the inbox; the
	// follow-up password change is a separate authenticated step.
	if params.Purpose == otp.PurposePasswordReset {
		return &AuthResult{User: user}, nil
	}

	pair, err := s.mintPair(user)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to mint token pair",
			logger.Component("auth"), logger.UserID(user.ID), logger.Error(err))
		return nil, ErrInternal
	}

	s.logger.InfoContext(ctx, "otp verified",
		logger.Component("auth"),
		logger.UserID(user.ID),
		slog.String("purpose", string(params.Purpose)),
	)
	return &AuthResult{User: user, Tokens: pair}, nil
}
