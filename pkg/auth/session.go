package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/socialmembrane/authsvc/pkg/logger"
)

// Refresh exchanges a valid, non-revoked refresh token for a new access
// token. The refresh token itself is not rotated; it stays valid until
// expiry or logout.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Decode(refreshToken)
	if err != nil {
		return "", ErrUnauthorized
	}
	// Access tokens carry no jti; presenting one here is a misuse.
	if claims.ID == "" {
		return "", ErrUnauthorized
	}

	revoked, err := s.denylist.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "denylist lookup failed",
			logger.Component("auth"), logger.TokenID(claims.ID), logger.Error(err))
		return "", ErrInternal
	}
	if revoked {
		return "", ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return "", ErrUnauthorized
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrUnauthorized
		}
		s.logger.ErrorContext(ctx, "failed to load user",
			logger.Component("auth"), logger.UserID(userID), logger.Error(err))
		return "", ErrInternal
	}
	if !user.IsActive {
		return "", ErrUnauthorized
	}

	access, err := s.tokens.IssueAccess(user.ID.String())
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to issue access token",
			logger.Component("auth"), logger.UserID(user.ID), logger.Error(err))
		return "", ErrInternal
	}
	return access, nil
}

// Logout revokes the refresh token's jti. Revoking an already-revoked
// token succeeds, so retried and concurrent logouts converge on the
// same state.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.Decode(refreshToken)
	if err != nil {
		return ErrUnauthorized
	}
	if claims.ID == "" {
		return ErrUnauthorized
	}

	revoked, err := s.denylist.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "denylist lookup failed",
			logger.Component("auth"), logger.TokenID(claims.ID), logger.Error(err))
		return ErrInternal
	}
	if revoked {
		return nil
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ErrUnauthorized
	}

	if err := s.denylist.RevokeToken(ctx, claims.ID, userID, claims.ExpiresAt.Time); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke token",
			logger.Component("auth"), logger.TokenID(claims.ID), logger.Error(err))
		return ErrInternal
	}

	s.logger.InfoContext(ctx, "refresh token revoked",
		logger.Component("auth"), logger.UserID(userID), logger.TokenID(claims.ID))
	return nil
}

// Me resolves the account behind an access token.
func (s *Service) Me(ctx context.Context, accessToken string) (*User, error) {
	claims, err := s.tokens.Decode(accessToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		s.logger.ErrorContext(ctx, "failed to load user",
			logger.Component("auth"), logger.UserID(userID), logger.Error(err))
		return nil, ErrInternal
	}
	if !user.IsActive {
		return nil, ErrForbidden
	}
	return user, nil
}
