package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Purpose identifies why a code was issued. A user may hold one live code
// per purpose at a time.
type Purpose string

const (
	PurposeVerification  Purpose = "verification"
	PurposeLogin         Purpose = "login"
	PurposePasswordReset Purpose = "password_reset"
)

// Valid reports whether the purpose is one of the known values.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeVerification, PurposeLogin, PurposePasswordReset:
		return true
	}
	return false
}

// Record is a stored one-time code. CodeHash is a bcrypt digest; the
// plaintext code is never persisted.
type Record struct {
	UserID    uuid.UUID
	Purpose   Purpose
	CodeHash  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Storage defines the persistence operations the engine requires.
// Upsert must atomically replace any existing record for the same
// (user, purpose) pair - two concurrent issuances must not leave two live
// records.
type Storage interface {
	UpsertRecord(ctx context.Context, rec Record) error
	GetRecord(ctx context.Context, userID uuid.UUID, purpose Purpose) (*Record, error)
	DeleteRecord(ctx context.Context, userID uuid.UUID, purpose Purpose) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// Hasher abstracts the credential hasher shared with password auth.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

// Engine issues, verifies and expires one-time codes.
type Engine struct {
	storage Storage
	hasher  Hasher
	ttl     time.Duration
}

// Option configures an Engine during construction.
type Option func(*Engine)

// WithTTL sets the code lifetime. Default is 10 minutes.
func WithTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl > 0 {
			e.ttl = ttl
		}
	}
}

// NewEngine creates an OTP engine backed by the given storage and hasher.
func NewEngine(storage Storage, hasher Hasher, opts ...Option) *Engine {
	e := &Engine{
		storage: storage,
		hasher:  hasher,
		ttl:     10 * time.Minute,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TTL reports the configured code lifetime.
func (e *Engine) TTL() time.Duration { return e.ttl }

// Issue generates a fresh code for the user and purpose, replacing any
// prior one, and returns the plaintext for dispatch.
func (e *Engine) Issue(ctx context.Context, userID uuid.UUID, purpose Purpose) (string, error) {
	if !purpose.Valid() {
		return "", ErrInvalidPurpose
	}

	code, err := Generate()
	if err != nil {
		return "", err
	}

	hash, err := e.hasher.Hash(code)
	if err != nil {
		return "", fmt.Errorf("failed to hash otp code: %w", err)
	}

	rec := Record{
		UserID:    userID,
		Purpose:   purpose,
		CodeHash:  hash,
		ExpiresAt: time.Now().Add(e.ttl),
		CreatedAt: time.Now(),
	}
	if err := e.storage.UpsertRecord(ctx, rec); err != nil {
		return "", fmt.Errorf("failed to store otp record: %w", err)
	}

	return code, nil
}

// Verify checks the code for the user and purpose. It fails closed: a
// missing record, an expired record or a hash mismatch all return false.
// An expired record found during the check is deleted. On success the
// record is consumed so the same code can never verify twice.
func (e *Engine) Verify(ctx context.Context, userID uuid.UUID, code string, purpose Purpose) (bool, error) {
	rec, err := e.storage.GetRecord(ctx, userID, purpose)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load otp record: %w", err)
	}

	if time.Now().After(rec.ExpiresAt) {
		if err := e.storage.DeleteRecord(ctx, userID, purpose); err != nil {
			return false, fmt.Errorf("failed to delete expired otp record: %w", err)
		}
		return false, nil
	}

	if !e.hasher.Verify(code, rec.CodeHash) {
		return false, nil
	}

	if err := e.storage.DeleteRecord(ctx, userID, purpose); err != nil {
		return false, fmt.Errorf("failed to consume otp record: %w", err)
	}
	return true, nil
}

// SweepExpired bulk-deletes expired records across all purposes. The sweep
// is idempotent and safe to run concurrently with verification.
func (e *Engine) SweepExpired(ctx context.Context) (int64, error) {
	return e.storage.DeleteExpired(ctx)
}
