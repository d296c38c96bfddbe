package auth_test

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/socialmembrane/authsvc/pkg/auth"
	"github.com/socialmembrane/authsvc/pkg/email"
	"github.com/socialmembrane/authsvc/pkg/oauthstate"
	"github.com/socialmembrane/authsvc/pkg/otp"
	"github.com/socialmembrane/authsvc/pkg/password"
	"github.com/socialmembrane/authsvc/pkg/ratelimiter"
	"github.com/socialmembrane/authsvc/pkg/tokens"
)

// fakeUserStorage is an in-memory auth.UserStorage.
type fakeUserStorage struct {
	mu   sync.Mutex
	byID map[uuid.UUID]auth.User
}

func newFakeUserStorage() *fakeUserStorage {
	return &fakeUserStorage{byID: make(map[uuid.UUID]auth.User)}
}

func (s *fakeUserStorage) CreateUser(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == user.Email {
			return auth.ErrEmailTaken
		}
		if user.GoogleID != "" && existing.GoogleID == user.GoogleID {
			return auth.ErrEmailTaken
		}
	}
	s.byID[user.ID] = *user
	return nil
}

func (s *fakeUserStorage) GetUserByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.byID[id]; ok {
		u := user
		return &u, nil
	}
	return nil, auth.ErrUserNotFound
}

func (s *fakeUserStorage) GetUserByEmail(_ context.Context, emailAddr string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.byID {
		if user.Email == emailAddr {
			u := user
			return &u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (s *fakeUserStorage) GetUserByGoogleID(_ context.Context, googleID string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.byID {
		if user.GoogleID != "" && user.GoogleID == googleID {
			u := user
			return &u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (s *fakeUserStorage) UpdateUser(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[user.ID]; !ok {
		return auth.ErrUserNotFound
	}
	s.byID[user.ID] = *user
	return nil
}

// fakeDenylist is an in-memory auth.TokenDenylist.
type fakeDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newFakeDenylist() *fakeDenylist {
	return &fakeDenylist{revoked: make(map[string]time.Time)}
}

func (d *fakeDenylist) RevokeToken(_ context.Context, jti string, _ uuid.UUID, expiresAt time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.revoked[jti]; ok {
		return nil
	}
	d.revoked[jti] = expiresAt
	return nil
}

func (d *fakeDenylist) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	expiresAt, ok := d.revoked[jti]
	return ok && expiresAt.After(time.Now()), nil
}

func (d *fakeDenylist) DeleteExpiredTokens(_ context.Context) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var removed int64
	for jti, expiresAt := range d.revoked {
		if !expiresAt.After(time.Now()) {
			delete(d.revoked, jti)
			removed++
		}
	}
	return removed, nil
}

// fakeOTPStorage is an in-memory otp.Storage.
type fakeOTPStorage struct {
	mu      sync.Mutex
	records map[string]otp.Record
}

func newFakeOTPStorage() *fakeOTPStorage {
	return &fakeOTPStorage{records: make(map[string]otp.Record)}
}

func (s *fakeOTPStorage) key(userID uuid.UUID, purpose otp.Purpose) string {
	return userID.String() + ":" + string(purpose)
}

func (s *fakeOTPStorage) UpsertRecord(_ context.Context, rec otp.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[s.key(rec.UserID, rec.Purpose)] = rec
	return nil
}

func (s *fakeOTPStorage) GetRecord(_ context.Context, userID uuid.UUID, purpose otp.Purpose) (*otp.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[s.key(userID, purpose)]
	if !ok {
		return nil, otp.ErrRecordNotFound
	}
	return &rec, nil
}

func (s *fakeOTPStorage) DeleteRecord(_ context.Context, userID uuid.UUID, purpose otp.Purpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, s.key(userID, purpose))
	return nil
}

func (s *fakeOTPStorage) DeleteExpired(_ context.Context) (int64, error) {
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

// captureMailer records dispatched messages instead of sending them.
type captureMailer struct {
	mu   sync.Mutex
	sent []email.SendEmailParams
	err  error
}

func (m *captureMailer) SendEmail(_ context.Context, params email.SendEmailParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, params)
	return nil
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

var codeRegex = regexp.MustCompile(`\d{6}`)

// lastCode extracts the plaintext code from the most recent message.
func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no email was dispatched")
	code := codeRegex.FindString(m.sent[len(m.sent)-1].BodyHTML)
	require.NotEmpty(t, code, "no code found in email body")
	return code
}

// stubAdapter is a canned auth.ProviderAdapter.
type stubAdapter struct {
	profile auth.ProviderProfile
	err     error
}

func (a *stubAdapter) ProviderID() string { return "google" }

func (a *stubAdapter) AuthURL(state string) string {
	return "https://provider.example/authorize?state=" + state
}

func (a *stubAdapter) ResolveProfile(_ context.Context, _ string) (auth.ProviderProfile, error) {
	if a.err != nil {
		return auth.ProviderProfile{}, a.err
	}
	return a.profile, nil
}

// testEnv bundles a service with the fakes behind it.
type testEnv struct {
	svc      *auth.Service
	users    *fakeUserStorage
	denylist *fakeDenylist
	mailer   *captureMailer
	states   *oauthstate.MemoryManager
	tokens   *tokens.Service
}

func newTestEnv(t *testing.T, opts ...auth.Option) *testEnv {
	t.Helper()

	tokenSvc, err := tokens.New(tokens.Config{
		Secret:     "test-secret-at-least-32-characters",
		Issuer:     "authsvc-test",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	require.NoError(t, err)

	env := &testEnv{
		users:    newFakeUserStorage(),
		denylist: newFakeDenylist(),
		mailer:   &captureMailer{},
		states:   oauthstate.NewMemoryManager(),
		tokens:   tokenSvc,
	}

	hasher := password.NewHasher(password.WithCost(bcrypt.MinCost))
	engine := otp.NewEngine(newFakeOTPStorage(), hasher)
	limiter := ratelimiter.New(ratelimiter.NewMemoryStore())

	opts = append([]auth.Option{auth.WithFailureDelay(0)}, opts...)
	env.svc = auth.NewService(
		env.users, env.denylist, engine, tokenSvc, hasher, limiter, env.mailer, env.states, opts...)
	return env
}

// registerUser creates an account directly in storage.
func (e *testEnv) registerUser(t *testing.T, emailAddr, pass string, verified bool) *auth.User {
	t.Helper()

	user := &auth.User{
		ID:         uuid.New(),
		Email:      emailAddr,
		IsActive:   true,
		IsVerified: verified,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if pass != "" {
		hasher := password.NewHasher(password.WithCost(bcrypt.MinCost))
		hash, err := hasher.Hash(pass)
		require.NoError(t, err)
		user.PasswordHash = hash
	}
	require.NoError(t, e.users.CreateUser(context.Background(), user))
	return user
}
