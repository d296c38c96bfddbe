package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config holds the signing material and lifetimes for issued tokens.
type Config struct {
	Secret     string        `env:"JWT_SECRET,required"`
	Issuer     string        `env:"JWT_ISSUER" envDefault:"authsvc"`
	AccessTTL  time.Duration `env:"JWT_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL time.Duration `env:"JWT_REFRESH_TTL" envDefault:"168h"`
}

// Claims is the payload carried by every token the service issues.
// Refresh tokens populate ID (jti); access tokens leave it empty.
type Claims struct {
	jwt.RegisteredClaims
}

// Service issues and validates HS256-signed tokens.
type Service struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// New creates a token service from the given configuration.
func New(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, ErrInvalidConfig
	}

	return &Service{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

// IssueAccess mints a short-lived access token for the subject.
func (s *Service) IssueAccess(subject string) (string, error) {
	return s.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.accessTTL)),
		},
	})
}

// IssueRefresh mints a long-lived refresh token for the subject. The
// returned jti is the revocation key recorded by the denylist on logout.
func (s *Service) IssueRefresh(subject string) (token, jti string, err error) {
	jti = uuid.NewString()
	token, err = s.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.refreshTTL)),
		},
	})
	if err != nil {
		return "", "", err
	}
	return token, jti, nil
}

// AccessTTL reports the configured access token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL reports the configured refresh token lifetime.
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// Decode verifies the token signature, issuer and temporal claims and
// returns the payload. Any failure is reported as ErrInvalidToken.
func (s *Service) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		// Pin the algorithm; a token claiming anything else is forged.
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
