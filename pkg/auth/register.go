package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/socialmembrane/authsvc/pkg/logger"
	"github.com/socialmembrane/authsvc/pkg/sanitizer"
	"github.com/socialmembrane/authsvc/pkg/validator"
)

// RegisterParams carries the registration input. Password is optional;
// accounts created without one can only sign in via OTP or OAuth.
type RegisterParams struct {
	Email     string
	Password  string
	FullName  string
	UserAgent string
}

// Register creates a new unverified account. Duplicate emails surface
// as ErrConflict with a message no more specific than any other
// rejection, so registration cannot be used to probe for accounts.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	emailAddr := sanitizer.NormalizeEmail(params.Email)
	fullName := sanitizer.UserInput(params.FullName, 255)

	rules := []validator.Rule{validator.ValidEmail("email", emailAddr)}
	if params.Password != "" {
		rules = append(rules,
			validator.StrongPassword("password", params.Password, validator.DefaultPasswordStrength()),
			validator.NotCommonPassword("password", params.Password),
		)
	}
	if err := validator.Apply(rules...); err != nil {
		return nil, errors.Join(ErrInvalidInput, err)
	}

	if isSuspiciousRequest(emailAddr, params.UserAgent) {
		s.logger.WarnContext(ctx, "suspicious registration refused",
			logger.Component("auth"), logger.Email(sanitizer.MaskEmail(emailAddr)))
		return nil, ErrInvalidInput
	}

	user := &User{
		ID:         uuid.New(),
		Email:      emailAddr,
		FullName:   fullName,
		IsActive:   true,
		IsVerified: false,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if params.Password != "" {
		hash, err := s.hasher.Hash(params.Password)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to hash password",
				logger.Component("auth"), logger.Error(err))
			return nil, ErrInternal
		}
		user.PasswordHash = hash
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrConflict
		}
		s.logger.ErrorContext(ctx, "failed to create user",
			logger.Component("auth"), logger.Error(err))
		return nil, ErrInternal
	}

	s.logger.InfoContext(ctx, "user registered",
		logger.Component("auth"),
		logger.UserID(user.ID),
		logger.Email(sanitizer.MaskEmail(user.Email)),
	)
	return user, nil
}
