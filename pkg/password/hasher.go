package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies secrets with bcrypt at a fixed cost.
type Hasher struct {
	cost int
}

// Option configures a Hasher during construction.
type Option func(*Hasher)

// WithCost sets the bcrypt cost. Values outside bcrypt's supported range
// fall back to the default cost rather than failing at hash time.
func WithCost(cost int) Option {
	return func(h *Hasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// NewHasher creates a Hasher with bcrypt.DefaultCost unless overridden.
func NewHasher(opts ...Option) *Hasher {
	h := &Hasher{cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash returns a salted bcrypt digest of the secret.
func (h *Hasher) Hash(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether the secret matches the digest. Malformed digests
// verify false; they are never treated as an error condition.
func (h *Hasher) Verify(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
