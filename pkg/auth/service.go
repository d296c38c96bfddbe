package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/socialmembrane/authsvc/pkg/email"
	"github.com/socialmembrane/authsvc/pkg/logger"
	"github.com/socialmembrane/authsvc/pkg/oauthstate"
	"github.com/socialmembrane/authsvc/pkg/otp"
	"github.com/socialmembrane/authsvc/pkg/password"
	"github.com/socialmembrane/authsvc/pkg/ratelimiter"
	"github.com/socialmembrane/authsvc/pkg/tokens"
)

// Service sequences the authentication flows.
type Service struct {
	users    UserStorage
	denylist TokenDenylist
	codes    *otp.Engine
	tokens   *tokens.Service
	hasher   *password.Hasher
	limiter  *ratelimiter.Limiter
	mailer   email.EmailSender
	states   oauthstate.Manager
	adapter  ProviderAdapter
	logger   *slog.Logger

	requireVerified bool
	failureDelay    time.Duration

	otpRequestPolicy ratelimiter.Policy
	otpVerifyPolicy  ratelimiter.Policy
	loginPolicy      ratelimiter.Policy
}

// Option configures a Service during construction.
type Option func(*Service)

// WithLogger configures the logger. Defaults to a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithProviderAdapter wires an OAuth provider. Without one the OAuth
// flows return ErrOAuthNotConfigured.
func WithProviderAdapter(adapter ProviderAdapter) Option {
	return func(s *Service) {
		s.adapter = adapter
	}
}

// WithRequireEmailVerification gates password login on a verified
// email. Default is true.
func WithRequireEmailVerification(required bool) Option {
	return func(s *Service) {
		s.requireVerified = required
	}
}

// WithFailureDelay sets the deliberate pause applied on unknown-account
// terminal paths so their latency matches a real hash comparison.
func WithFailureDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.failureDelay = d
		}
	}
}

// WithOTPRequestPolicy overrides the OTP issuance rate-limit policy.
func WithOTPRequestPolicy(p ratelimiter.Policy) Option {
	return func(s *Service) {
		s.otpRequestPolicy = p
	}
}

// WithOTPVerifyPolicy overrides the OTP verification rate-limit policy.
func WithOTPVerifyPolicy(p ratelimiter.Policy) Option {
	return func(s *Service) {
		s.otpVerifyPolicy = p
	}
}

// WithLoginPolicy overrides the password-login rate-limit policy.
func WithLoginPolicy(p ratelimiter.Policy) Option {
	return func(s *Service) {
		s.loginPolicy = p
	}
}

// NewService constructs the orchestrator from its collaborators.
func NewService(
	users UserStorage,
	denylist TokenDenylist,
	codes *otp.Engine,
	tokenSvc *tokens.Service,
	hasher *password.Hasher,
	limiter *ratelimiter.Limiter,
	mailer email.EmailSender,
	states oauthstate.Manager,
	opts ...Option,
) *Service {
	s := &Service{
		users:    users,
		denylist: denylist,
		codes:    codes,
		tokens:   tokenSvc,
		hasher:   hasher,
		limiter:  limiter,
		mailer:   mailer,
		states:   states,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),

		requireVerified: true,
		failureDelay:    100 * time.Millisecond,

		otpRequestPolicy: ratelimiter.PolicyOTPRequest,
		otpVerifyPolicy:  ratelimiter.PolicyOTPVerify,
		loginPolicy:      ratelimiter.PolicyLogin,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SweepExpired removes expired OTP records and inert denylist rows.
// Both deletions are idempotent, so the sweep can run on any schedule
// and concurrently with live traffic.
func (s *Service) SweepExpired(ctx context.Context) error {
	otps, err := s.codes.SweepExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to sweep otp records: %w", err)
	}
	revoked, err := s.denylist.DeleteExpiredTokens(ctx)
	if err != nil {
		return fmt.Errorf("failed to sweep denylist: %w", err)
	}
	if s.states != nil {
		if _, err := s.states.Sweep(ctx); err != nil {
			return fmt.Errorf("failed to sweep oauth states: %w", err)
		}
	}
	s.logger.InfoContext(ctx, "sweep complete",
		logger.Component("auth"),
		slog.Int64("otp_records", otps),
		slog.Int64("denylist_rows", revoked),
	)
	return nil
}

// checkLimit evaluates the rate limit and converts a rejection into the
// caller-facing RateLimitedError.
func (s *Service) checkLimit(ctx context.Context, identifier string, p ratelimiter.Policy) error {
	res, err := s.limiter.Check(ctx, identifier, p)
	if err != nil {
		s.logger.ErrorContext(ctx, "rate limit check failed",
			logger.Component("auth"), logger.Error(err))
		return ErrInternal
	}
	if !res.Allowed {
		return &RateLimitedError{RetryAfter: res.RetryAfter}
	}
	return nil
}

// recordAttempt consumes rate-limit budget. A store failure is logged
// but never fails the flow; limiting degrades open, auth does not.
func (s *Service) recordAttempt(ctx context.Context, identifier string) {
	if err := s.limiter.Record(ctx, identifier); err != nil {
		s.logger.ErrorContext(ctx, "failed to record attempt",
			logger.Component("auth"), logger.Error(err))
	}
}

// delayFailure pauses before answering an unknown-account path so its
// timing matches the hash-comparison path.
func (s *Service) delayFailure(ctx context.Context) {
	if s.failureDelay <= 0 {
		return
	}
	select {
	case <-time.After(s.failureDelay):
	case <-ctx.Done():
	}
}

// mintPair issues an access/refresh pair for the user.
func (s *Service) mintPair(user *User) (*TokenPair, error) {
	access, err := s.tokens.IssueAccess(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, _, err := s.tokens.IssueRefresh(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

func otpRequestKey(email string) string { return "otp_request:" + email }
func otpVerifyKey(email string) string  { return "otp_verify:" + email }
func loginKey(email string) string      { return "login:" + email }
