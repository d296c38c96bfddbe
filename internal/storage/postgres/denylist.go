package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/socialmembrane/authsvc/pkg/auth"
)

// DenylistRepository records revoked refresh-token IDs.
type DenylistRepository struct {
	pool *pgxpool.Pool
}

// NewDenylistRepository creates a denylist repository on the given pool.
func NewDenylistRepository(pool *pgxpool.Pool) *DenylistRepository {
	return &DenylistRepository{pool: pool}
}

var _ auth.TokenDenylist = (*DenylistRepository)(nil)

// RevokeToken records the jti. ON CONFLICT DO NOTHING makes concurrent
// logouts of the same token converge without a duplicate-key error.
func (r *DenylistRepository) RevokeToken(ctx context.Context, jti string, userID uuid.UUID, expiresAt time.Time) error {
	const query = `
		INSERT INTO invalidated_tokens (jti, user_id, expires_at, invalidated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (jti) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, jti, userID, expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsTokenRevoked reports whether the jti is revoked and still within
// its original lifetime. Expired rows count as absent, which lets the
// sweep lag without affecting correctness.
func (r *DenylistRepository) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM invalidated_tokens
			WHERE jti = $1 AND expires_at > now()
		)`

	var revoked bool
	if err := r.pool.QueryRow(ctx, query, jti).Scan(&revoked); err != nil {
		return false, fmt.Errorf("failed to check denylist: %w", err)
	}
	return revoked, nil
}

// DeleteExpiredTokens removes rows whose original expiry has passed.
// Those rows are inert for reads, so the sweep is safe alongside them.
func (r *DenylistRepository) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invalidated_tokens WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired denylist rows: %w", err)
	}
	return tag.RowsAffected(), nil
}
