package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/socialmembrane/authsvc/pkg/auth"
	"github.com/socialmembrane/authsvc/pkg/pg"
)

// UserRepository persists accounts.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a user repository on the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

var _ auth.UserStorage = (*UserRepository)(nil)

// CreateUser inserts a new account. A unique violation on email or the
// federated id maps to auth.ErrEmailTaken.
func (r *UserRepository) CreateUser(ctx context.Context, user *auth.User) error {
	const query = `
		INSERT INTO users (id, email, password_hash, google_id, full_name, is_active, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		nullable(user.PasswordHash),
		nullable(user.GoogleID),
		user.FullName,
		user.IsActive,
		user.IsVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return auth.ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByID loads an account by primary key.
func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetUserByEmail loads an account by its normalized email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetUserByGoogleID loads an account by its federated identifier.
func (r *UserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*auth.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = $1`, googleID)
}

// UpdateUser writes back the mutable account fields.
func (r *UserRepository) UpdateUser(ctx context.Context, user *auth.User) error {
	const query = `
		UPDATE users
		SET email = $2, password_hash = $3, google_id = $4, full_name = $5,
		    is_active = $6, is_verified = $7, updated_at = $8
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		nullable(user.PasswordHash),
		nullable(user.GoogleID),
		user.FullName,
		user.IsActive,
		user.IsVerified,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

const userColumns = `id, email, password_hash, google_id, full_name, is_active, is_verified, created_at, updated_at`

func (r *UserRepository) getUser(ctx context.Context, query string, arg any) (*auth.User, error) {
	var (
		user         auth.User
		passwordHash *string
		googleID     *string
	)
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&passwordHash,
		&googleID,
		&user.FullName,
		&user.IsActive,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}
	if googleID != nil {
		user.GoogleID = *googleID
	}
	return &user, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
