package otp_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/socialmembrane/authsvc/pkg/otp"
	"github.com/socialmembrane/authsvc/pkg/password"
)

// memStorage is an in-memory otp.Storage for engine tests.
type memStorage struct {
	mu      sync.Mutex
	records map[string]otp.Record
}

func newMemStorage() *memStorage {
	return &memStorage{records: make(map[string]otp.Record)}
}

func (s *memStorage) key(userID uuid.UUID, purpose otp.Purpose) string {
	return userID.String() + ":" + string(purpose)
}

func (s *memStorage) UpsertRecord(_ context.Context, rec otp.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[s.key(rec.UserID, rec.Purpose)] = rec
	return nil
}

func (s *memStorage) GetRecord(_ context.Context, userID uuid.UUID, purpose otp.Purpose) (*otp.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[s.key(userID, purpose)]
	if !ok {
		return nil, otp.ErrRecordNotFound
	}
	return &rec, nil
}

func (s *memStorage) DeleteRecord(_ context.Context, userID uuid.UUID, purpose otp.Purpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, s.key(userID, purpose))
	return nil
}

func (s *memStorage) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for key, rec := range s.records {
		if time.Now().After(rec.ExpiresAt) {
			delete(s.records, key)
			removed++
		}
	}
	return removed, nil
}

func newEngine(t *testing.T, opts ...otp.Option) (*otp.Engine, *memStorage) {
	t.Helper()
	storage := newMemStorage()
	hasher := password.NewHasher(password.WithCost(bcrypt.MinCost))
	return otp.NewEngine(storage, hasher, opts...), storage
}

func TestEngine_IssueAndVerify(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine, _ := newEngine(t)
	userID := uuid.New()

	code, err := engine.Issue(ctx, userID, otp.PurposeLogin)
	require.NoError(t, err)
	require.Regexp(t, sixDigits, code)

	ok, err := engine.Verify(ctx, userID, code, otp.PurposeLogin)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEngine_CodeIsSingleUse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine, _ := newEngine(t)
	userID := uuid.New()

	code, err := engine.Issue(ctx, userID, otp.PurposeVerification)
	require.NoError(t, err)

	ok, err := engine.Verify(ctx, userID, code, otp.PurposeVerification)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = engine.Verify(ctx, userID, code, otp.PurposeVerification)
	require.NoError(t, err)
	assert.False(t, ok, "a consumed code must never verify again")
}

func TestEngine_ReissueInvalidatesPriorCode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine, _ := newEngine(t)
	userID := uuid.New()

	first, err := engine.Issue(ctx, userID, otp.PurposeLogin)
	require.NoError(t, err)
	second, err := engine.Issue(ctx, userID, otp.PurposeLogin)
	require.NoError(t, err)

	if first != second {
		ok, err := engine.Verify(ctx, userID, first, otp.PurposeLogin)
		require.NoError(t, err)
		assert.False(t, ok, "old code must stop verifying after reissue")
	}

	ok, err := engine.Verify(ctx, userID, second, otp.PurposeLogin)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEngine_PurposesAreIndependent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine, _ := newEngine(t)
	userID := uuid.New()

	loginCode, err := engine.Issue(ctx, userID, otp.PurposeLogin)
	require.NoError(t, err)
	resetCode, err := engine.Issue(ctx, userID, otp.PurposePasswordReset)
	require.NoError(t, err)

	ok, err := engine.Verify(ctx, userID, loginCode, otp.PurposePasswordReset)
	require.NoError(t, err)
	if loginCode != resetCode {
		assert.False(t, ok, "codes must not cross purposes")
	}

	ok, err = engine.Verify(ctx, userID, resetCode, otp.PurposePasswordReset)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEngine_ExpiredCodeFailsAndIsDeleted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine, storage := newEngine(t, otp.WithTTL(time.Millisecond))
	userID := uuid.New()

	code, err := engine.Issue(ctx, userID, otp.PurposeLogin)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	ok, err := engine.Verify(ctx, userID, code, otp.PurposeLogin)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = storage.GetRecord(ctx, userID, otp.PurposeLogin)
	assert.ErrorIs(t, err, otp.ErrRecordNotFound, "stale record is deleted during the check")
}

func TestEngine_VerifyFailsClosed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine, _ := newEngine(t)
	userID := uuid.New()

	t.Run("no record", func(t *testing.T) {
		ok, err := engine.Verify(ctx, userID, "123456", otp.PurposeLogin)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("wrong code", func(t *testing.T) {
		code, err := engine.Issue(ctx, userID, otp.PurposeLogin)
		require.NoError(t, err)

		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		ok, err := engine.Verify(ctx, userID, wrong, otp.PurposeLogin)
		require.NoError(t, err)
		assert.False(t, ok)

		// The record survives a mismatch; the right code still works.
		ok, err = engine.Verify(ctx, userID, code, otp.PurposeLogin)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestEngine_InvalidPurpose(t *testing.T) {
	t.Parallel()
	engine, _ := newEngine(t)

	_, err := engine.Issue(context.Background(), uuid.New(), otp.Purpose("bogus"))
	assert.ErrorIs(t, err, otp.ErrInvalidPurpose)
}

func TestEngine_SweepExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine, _ := newEngine(t, otp.WithTTL(time.Millisecond))

	_, err := engine.Issue(ctx, uuid.New(), otp.PurposeLogin)
	require.NoError(t, err)
	_, err = engine.Issue(ctx, uuid.New(), otp.PurposeVerification)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	removed, err := engine.SweepExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	removed, err = engine.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed, "sweep is idempotent")
}
