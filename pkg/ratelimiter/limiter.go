package ratelimiter

import (
	"context"
	"time"
)

// Policy bounds attempts for one action class. Distinct actions carry
// independent policies and windows.
type Policy struct {
	MaxAttempts int
	Window      time.Duration
}

func (p Policy) validate() error {
	if p.MaxAttempts <= 0 || p.Window <= 0 {
		return ErrInvalidPolicy
	}
	return nil
}

// Default policies matching the abuse profile of each auth action.
var (
	PolicyOTPRequest = Policy{MaxAttempts: 5, Window: time.Hour}
	PolicyOTPVerify  = Policy{MaxAttempts: 3, Window: time.Minute}
	PolicyLogin      = Policy{MaxAttempts: 5, Window: 15 * time.Minute}
)

// Result reports the outcome of a Check.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Store persists attempt windows per identifier.
type Store interface {
	// Count returns the attempt weight within the trailing window and the
	// timestamp of the oldest attempt inside it.
	Count(ctx context.Context, identifier string, window time.Duration) (count int, oldest time.Time, err error)
	// Record appends a unit-weight attempt at the current time.
	Record(ctx context.Context, identifier string) error
}

// Limiter evaluates policies against a Store.
type Limiter struct {
	store Store
}

// New creates a Limiter backed by the given store.
func New(store Store) *Limiter {
	return &Limiter{store: store}
}

// Check evaluates the identifier against the policy without consuming
// budget. When the cap is reached, RetryAfter is the time until the oldest
// in-window attempt ages out, floored at zero.
func (l *Limiter) Check(ctx context.Context, identifier string, p Policy) (Result, error) {
	if err := p.validate(); err != nil {
		return Result{}, err
	}

	count, oldest, err := l.store.Count(ctx, identifier, p.Window)
	if err != nil {
		return Result{}, err
	}

	if count >= p.MaxAttempts {
		retryAfter := p.Window - time.Since(oldest)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return Result{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
	}

	return Result{Allowed: true, Remaining: p.MaxAttempts - count}, nil
}

// Record counts an attempt against the identifier. Callers invoke it on
// every terminal path where the attempt should consume budget.
func (l *Limiter) Record(ctx context.Context, identifier string) error {
	return l.store.Record(ctx, identifier)
}
