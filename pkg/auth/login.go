package auth

import (
	"context"
	"errors"

	"github.com/socialmembrane/authsvc/pkg/logger"
	"github.com/socialmembrane/authsvc/pkg/sanitizer"
	"github.com/socialmembrane/authsvc/pkg/validator"
)

// LoginParams carries the password-login input.
type LoginParams struct {
	Email    string
	Password string
}

// Login authenticates with email and password. Unknown accounts,
// OAuth-only accounts and wrong passwords all answer
// ErrInvalidCredentials; account gating (inactive, unverified when
// verification is required) answers ErrForbidden only after the
// password has been proven.
func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	emailAddr := sanitizer.NormalizeEmail(params.Email)
	if err := validator.Apply(validator.ValidEmail("email", emailAddr)); err != nil {
		return nil, errors.Join(ErrInvalidInput, err)
	}
	if params.Password == "" {
		return nil, ErrInvalidInput
	}

	key := loginKey(emailAddr)
	if err := s.checkLimit(ctx, key, s.loginPolicy); err != nil {
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

	// OAuth-only accounts have no hash; Verify on the empty digest
	// fails, keeping the path identical to a wrong password.
	if !s.hasher.Verify(params.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrForbidden
	}
	if s.requireVerified && !user.IsVerified {
		return nil, ErrForbidden
	}

	pair, err := s.mintPair(user)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to mint token pair",
			logger.Component("auth"), logger.UserID(user.ID), logger.Error(err))
		return nil, ErrInternal
	}

	s.logger.InfoContext(ctx, "user logged in",
		logger.Component("auth"), logger.UserID(user.ID))
	return &AuthResult{User: user, Tokens: pair}, nil
}
