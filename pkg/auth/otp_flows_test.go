package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialmembrane/authsvc/pkg/auth"
	"github.com/socialmembrane/authsvc/pkg/otp"
	"github.com/socialmembrane/authsvc/pkg/ratelimiter"
)

func TestService_RequestOTP(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("dispatches code to known account", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.registerUser(t, "user@example.com", "", false)

		err := env.svc.RequestOTP(ctx, auth.RequestOTPParams{
			Email:   "User@Example.com",
			Purpose: otp.PurposeVerification,
		})
		require.NoError(t, err)
		require.Equal(t, 1, env.mailer.count())
		assert.Regexp(t, `^\d{6}$`, env.mailer.lastCode(t))
	})

	t.Run("unknown account reports success without mail", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		err := env.svc.RequestOTP(ctx, auth.RequestOTPParams{
			Email:   "ghost@example.com",
			Purpose: otp.PurposeLogin,
		})
		require.NoError(t, err)
		assert.Zero(t, env.mailer.count(), "no mail for unknown accounts")
	})

	t.Run("suspicious request reports success without mail", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.registerUser(t, "abuse@tempmail.org", "", false)

		err := env.svc.RequestOTP(ctx, auth.RequestOTPParams{
			Email:   "abuse@tempmail.org",
			Purpose: otp.PurposeLogin,
		})
		require.NoError(t, err)
		assert.Zero(t, env.mailer.count())
	})

	t.Run("invalid purpose", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		err := env.svc.RequestOTP(ctx, auth.RequestOTPParams{
			Email:   "user@example.com",
			Purpose: otp.Purpose("bogus"),
		})
		assert.ErrorIs(t, err, auth.ErrInvalidInput)
	})

	t.Run("rate limited after cap with retry-after", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, auth.WithOTPRequestPolicy(ratelimiter.Policy{
			MaxAttempts: 2,
			Window:      time.Hour,
		}))
		env.registerUser(t, "user@example.com", "", false)

		params := auth.RequestOTPParams{Email: "user@example.com", Purpose: otp.PurposeLogin}
		require.NoError(t, env.svc.RequestOTP(ctx, params))
		require.NoError(t, env.svc.RequestOTP(ctx, params))

		err := env.svc.RequestOTP(ctx, params)
		require.ErrorIs(t, err, auth.ErrRateLimited)

		var rateLimited *auth.RateLimitedError
		require.ErrorAs(t, err, &rateLimited)
		assert.Positive(t, rateLimited.RetryAfter)
	})

	t.Run("unknown accounts burn budget too", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, auth.WithOTPRequestPolicy(ratelimiter.Policy{
			MaxAttempts: 1,
			Window:      time.Hour,
		}))

		params := auth.RequestOTPParams{Email: "ghost@example.com", Purpose: otp.PurposeLogin}
		require.NoError(t, env.svc.RequestOTP(ctx, params))

		err := env.svc.RequestOTP(ctx, params)
		assert.ErrorIs(t, err, auth.ErrRateLimited,
			"the not-found path must be indistinguishable from the found path")
	})

	t.Run("resend dispatches a replacement code", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.registerUser(t, "user@example.com", "", false)

		params := auth.RequestOTPParams{Email: "user@example.com", Purpose: otp.PurposeLogin}
		require.NoError(t, env.svc.RequestOTP(ctx, params))
		require.NoError(t, env.svc.ResendOTP(ctx, params))
		assert.Equal(t, 2, env.mailer.count())
	})

	t.Run("mail failure surfaces as internal", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.registerUser(t, "user@example.com", "", false)
		env.mailer.err = errors.New("postmark down")

		err := env.svc.RequestOTP(ctx, auth.RequestOTPParams{
			Email:   "user@example.com",
			Purpose: otp.PurposeLogin,
		})
		assert.ErrorIs(t, err, auth.ErrInternal)
	})
}

func TestService_VerifyOTP(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	requestCode := func(t *testing.T, env *testEnv, emailAddr string, purpose otp.Purpose) string {
		t.Helper()
		require.NoError(t, env.svc.RequestOTP(ctx, auth.RequestOTPParams{
			Email:   emailAddr,
			Purpose: purpose,
		}))
		return env.mailer.lastCode(t)
	}

	t.Run("verification purpose marks verified and issues tokens", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		user := env.registerUser(t, "user@example.com", "", false)
		code := requestCode(t, env, "user@example.com", otp.PurposeVerification)

		res, err := env.svc.VerifyOTP(ctx, auth.VerifyOTPParams{
			Email:   "user@example.com",
			Code:    code,
			Purpose: otp.PurposeVerification,
		})
		require.NoError(t, err)
		assert.True(t, res.User.IsVerified)
		require.NotNil(t, res.Tokens)

		claims, err := env.tokens.Decode(res.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.Subject)

		stored, err := env.users.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsVerified, "verification is persisted")
	})

	t.Run("login purpose issues tokens", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.registerUser(t, "user@example.com", "", true)
		code := requestCode(t, env, "user@example.com", otp.PurposeLogin)

		res, err := env.svc.VerifyOTP(ctx, auth.VerifyOTPParams{
			Email:   "user@example.com",
			Code:    code,
			Purpose: otp.PurposeLogin,
		})
		require.NoError(t, err)
		require.NotNil(t, res.Tokens)
		assert.NotEmpty(t, res.Tokens.AccessToken)
		assert.NotEmpty(t, res.Tokens.RefreshToken)
	})

	t.Run("password reset purpose confirms without tokens", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.registerUser(t, "user@example.com", "Aa1!aaaa", true)
		code := requestCode(t, env, "user@example.com", otp.PurposePasswordReset)

		res, err := env.svc.VerifyOTP(ctx, auth.VerifyOTPParams{
			Email:   "user@example.com",
			Code:    code,
			Purpose: otp.PurposePasswordReset,
		})
		require.NoError(t, err)
		assert.Nil(t, res.Tokens, "a reset confirmation must not sign the user in")
	})

	t.Run("code is single use", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.registerUser(t, "user@example.com", "", true)
		code := requestCode(t, env, "user@example.com", otp.PurposeLogin)

		_, err := env.svc.VerifyOTP(ctx, auth.VerifyOTPParams{
			Email:   "user@example.com",
			Code:    code,
			Purpose: otp.PurposeLogin,
		})
		require.NoError(t, err)

		_, err = env.svc.VerifyOTP(ctx, auth.VerifyOTPParams{
			Email:   "user@example.com",
			Code:    code,
			Purpose: otp.PurposeLogin,
		})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("reissue invalidates prior code", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.registerUser(t, "user@example.com", "", true)
		first := requestCode(t, env, "user@example.com", otp.PurposeLogin)
		second := requestCode(t, env, "user@example.com", otp.PurposeLogin)

		if first != second {
			_, err := env.svc.VerifyOTP(ctx, auth.VerifyOTPParams{
				Email:   "user@example.com",
				Code:    first,
				Purpose: otp.PurposeLogin,
			})
			assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		}

		_, err := env.svc.VerifyOTP(ctx, auth.VerifyOTPParams{
			Email:   "user@example.com",
			Code:    second,
			Purpose: otp.PurposeLogin,
		})
		assert.NoError(t, err)
	})

	t.Run("wrong code is a generic failure", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.registerUser(t, "user@example.com", "", true)
		code := requestCode(t, env, "user@example.com", otp.PurposeLogin)

		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		_, err := env.svc.VerifyOTP(ctx, auth.VerifyOTPParams{
			Email:   "user@example.com",
			Code:    wrong,
			Purpose: otp.PurposeLogin,
		})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown account matches wrong-code failure", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		_, err := env.svc.VerifyOTP(ctx, auth.VerifyOTPParams{
			Email:   "ghost@example.com",
			Code:    "123456",
			Purpose: otp.PurposeLogin,
		})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("malformed code rejected before any store access", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		for _, code := range []string{"", "12345", "1234567", "12a456"} {
			_, err := env.svc.VerifyOTP(ctx, auth.VerifyOTPParams{
				Email:   "user@example.com",
				Code:    code,
				Purpose: otp.PurposeLogin,
			})
			assert.ErrorIs(t, err, auth.ErrInvalidInput, "code %q", code)
		}
	})

	t.Run("five wrong attempts then rate limited", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, auth.WithOTPVerifyPolicy(ratelimiter.Policy{
			MaxAttempts: 5,
			Window:      time.Minute,
		}))
		env.registerUser(t, "user@example.com", "", true)
		code := requestCode(t, env, "user@example.com", otp.PurposeLogin)

		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		params := auth.VerifyOTPParams{
			Email:   "user@example.com",
			Code:    wrong,
			Purpose: otp.PurposeLogin,
		}
		for range 5 {
			_, err := env.svc.VerifyOTP(ctx, params)
			require.ErrorIs(t, err, auth.ErrInvalidCredentials)
		}

		_, err := env.svc.VerifyOTP(ctx, params)
		require.ErrorIs(t, err, auth.ErrRateLimited)

		var rateLimited *auth.RateLimitedError
		require.ErrorAs(t, err, &rateLimited)
		assert.Positive(t, rateLimited.RetryAfter)
	})
}
