package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/socialmembrane/authsvc/pkg/logger"
	"github.com/socialmembrane/authsvc/pkg/sanitizer"
)

// OAuthCallbackParams carries the provider redirect's query values.
// ProviderError is the provider's error parameter, if any.
type OAuthCallbackParams struct {
	Code          string
	State         string
	ProviderError string
}

// GetAuthURL registers a fresh CSRF state and returns the provider's
// authorization URL carrying it.
func (s *Service) GetAuthURL(ctx context.Context) (string, error) {
	if s.adapter == nil {
		return "", ErrOAuthNotConfigured
	}

	state, err := s.states.Create(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create oauth state",
			logger.Component("auth"), logger.Error(err))
		return "", ErrInternal
	}
	return s.adapter.AuthURL(state), nil
}

// HandleOAuthCallback completes the federation flow: consume the CSRF
// state, exchange the code, resolve the provider identity, then find or
// create the local account. Accounts matched by email are auto-linked
// and marked verified; brand-new accounts are created pre-verified
// because the provider already proved inbox control.
func (s *Service) HandleOAuthCallback(ctx context.Context, params OAuthCallbackParams) (*AuthResult, error) {
	if s.adapter == nil {
		return nil, ErrOAuthNotConfigured
	}
	if params.ProviderError != "" || params.Code == "" {
		return nil, ErrInvalidInput
	}

	ok, err := s.states.ValidateAndConsume(ctx, params.State)
	if err != nil {
		s.logger.ErrorContext(ctx, "oauth state check failed",
			logger.Component("auth"), logger.Error(err))
		return nil, ErrInternal
	}
	if !ok {
		return nil, ErrInvalidInput
	}

	profile, err := s.adapter.ResolveProfile(ctx, params.Code)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			s.logger.WarnContext(ctx, "oauth exchange failed",
				logger.Component("auth"),
				slog.String("cause", string(upstream.Cause)),
				logger.Error(err),
			)
			return nil, upstream
		}
		s.logger.ErrorContext(ctx, "failed to resolve provider profile",
			logger.Component("auth"), logger.Error(err))
		return nil, ErrInternal
	}

	if profile.ProviderUserID == "" || profile.Email == "" {
		return nil, &UpstreamError{
			Cause: UpstreamBadRequest,
			Err:   fmt.Errorf("incomplete provider profile"),
		}
	}
	// Accepting an unverified provider email would let anyone claim an
	// inbox they do not control and link into an existing account.
	if !profile.EmailVerified {
		return nil, ErrForbidden
	}
	profile.Email = sanitizer.NormalizeEmail(profile.Email)

	user, err := s.resolveFederatedUser(ctx, profile)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrForbidden
	}

	pair, err := s.mintPair(user)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to mint token pair",
			logger.Component("auth"), logger.UserID(user.ID), logger.Error(err))
		return nil, ErrInternal
	}

	s.logger.InfoContext(ctx, "oauth sign-in complete",
		logger.Component("auth"),
		logger.UserID(user.ID),
		slog.String("provider", s.adapter.ProviderID()),
	)
	return &AuthResult{User: user, Tokens: pair}, nil
}

// resolveFederatedUser finds the account for a provider identity: by
// federated id first, then by email with auto-linking, else it creates
// a new pre-verified account.
func (s *Service) resolveFederatedUser(ctx context.Context, profile ProviderProfile) (*User, error) {
	user, err := s.users.GetUserByGoogleID(ctx, profile.ProviderUserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		s.logger.ErrorContext(ctx, "failed to load user by federated id",
			logger.Component("auth"), logger.Error(err))
		return nil, ErrInternal
	}

	user, err = s.users.GetUserByEmail(ctx, profile.Email)
	if err == nil {
		user.GoogleID = profile.ProviderUserID
		user.IsVerified = true
		user.UpdatedAt = time.Now()
		if err := s.users.UpdateUser(ctx, user); err != nil {
			s.logger.ErrorContext(ctx, "failed to link federated account",
				logger.Component("auth"), logger.UserID(user.ID), logger.Error(err))
			return nil, ErrInternal
		}
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		s.logger.ErrorContext(ctx, "failed to load user by email",
			logger.Component("auth"), logger.Error(err))
		return nil, ErrInternal
	}

	user = &User{
		ID:         uuid.New(),
		Email:      profile.Email,
		GoogleID:   profile.ProviderUserID,
		FullName:   sanitizer.UserInput(profile.Name, 255),
		IsActive:   true,
		IsVerified: true,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to create federated user",
			logger.Component("auth"), logger.Error(err))
		return nil, ErrInternal
	}
	return user, nil
}
