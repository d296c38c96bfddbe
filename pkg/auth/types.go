package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is the account record as the auth flows see it. PasswordHash is
// empty for OAuth-only accounts; GoogleID is empty until the account is
// federated.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	GoogleID     string
	FullName     string
	IsActive     bool
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TokenPair carries a freshly minted access/refresh pair. ExpiresIn is
// the access token lifetime in seconds, for the response envelope.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// AuthResult is the success payload of the token-issuing flows. Tokens
// is nil when the flow confirms something without signing the user in,
// such as a password-reset OTP verification.
type AuthResult struct {
	User   *User
	Tokens *TokenPair
}

// ProviderProfile is the normalized identity returned by a provider
// adapter after code exchange.
type ProviderProfile struct {
	ProviderUserID string
	Email          string
	EmailVerified  bool
	Name           string
	AvatarURL      string
}

// UserStorage defines the persistence operations the flows require.
// Implementations return ErrUserNotFound and ErrEmailTaken where those
// conditions apply.
type UserStorage interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
}

// TokenDenylist records revoked refresh-token IDs. RevokeToken is
// idempotent: revoking an already present jti succeeds. IsTokenRevoked
// reports true only while the recorded expiry is in the future, so
// expired rows act as absent and the sweep can lag safely behind.
type TokenDenylist interface {
	RevokeToken(ctx context.Context, jti string, userID uuid.UUID, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	DeleteExpiredTokens(ctx context.Context) (int64, error)
}

// ProviderAdapter hides provider-specific OAuth mechanics from the
// flows. ResolveProfile failures are reported as *UpstreamError with the
// cause classified.
type ProviderAdapter interface {
	ProviderID() string
	AuthURL(state string) string
	ResolveProfile(ctx context.Context, code string) (ProviderProfile, error)
}
