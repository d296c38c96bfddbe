package otp_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialmembrane/authsvc/pkg/otp"
)

var sixDigits = regexp.MustCompile(`^\d{6}$`)

func TestGenerate_Format(t *testing.T) {
	t.Parallel()

	for range 200 {
		code, err := otp.Generate()
		require.NoError(t, err)
		assert.Regexp(t, sixDigits, code)
	}
}

func TestGenerate_NotConstant(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for range 50 {
		code, err := otp.Generate()
		require.NoError(t, err)
		seen[code] = struct{}{}
	}
	// 50 draws from a million-code space colliding down to one value
	// would mean the source is broken.
	assert.Greater(t, len(seen), 1)
}
