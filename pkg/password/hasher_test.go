package password_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/socialmembrane/authsvc/pkg/password"
)

func TestHasher_HashAndVerify(t *testing.T) {
	t.Parallel()

	hasher := password.NewHasher(password.WithCost(bcrypt.MinCost))

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		digest, err := hasher.Hash("Sup3r-secret!")
		require.NoError(t, err)
		require.NotEmpty(t, digest)
		assert.NotEqual(t, "Sup3r-secret!", digest)
		assert.True(t, hasher.Verify("Sup3r-secret!", digest))
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		t.Parallel()
		digest, err := hasher.Hash("correct-horse")
		require.NoError(t, err)
		assert.False(t, hasher.Verify("battery-staple", digest))
	})

	t.Run("same secret hashes differently", func(t *testing.T) {
		t.Parallel()
		first, err := hasher.Hash("123456")
		require.NoError(t, err)
		second, err := hasher.Hash("123456")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("malformed digest verifies false", func(t *testing.T) {
		t.Parallel()
		assert.False(t, hasher.Verify("anything", "not-a-bcrypt-digest"))
		assert.False(t, hasher.Verify("anything", ""))
	})
}

func TestHasher_WithCost(t *testing.T) {
	t.Parallel()

	t.Run("out of range cost falls back to default", func(t *testing.T) {
		t.Parallel()
		hasher := password.NewHasher(password.WithCost(bcrypt.MaxCost + 10))
		digest, err := hasher.Hash("secret")
		require.NoError(t, err)

		cost, err := bcrypt.Cost([]byte(digest))
		require.NoError(t, err)
		assert.Equal(t, bcrypt.DefaultCost, cost)
	})
}
