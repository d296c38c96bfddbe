package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/socialmembrane/authsvc/pkg/otp"
	"github.com/socialmembrane/authsvc/pkg/pg"
)

// OTPRepository persists one-time code records.
type OTPRepository struct {
	pool *pgxpool.Pool
}

// NewOTPRepository creates an OTP repository on the given pool.
func NewOTPRepository(pool *pgxpool.Pool) *OTPRepository {
	return &OTPRepository{pool: pool}
}

var _ otp.Storage = (*OTPRepository)(nil)

// UpsertRecord atomically replaces any live record for the same
// (user, purpose). Two concurrent issuances race on the same row and
// the last writer wins; there is never a window with two live codes.
func (r *OTPRepository) UpsertRecord(ctx context.Context, rec otp.Record) error {
	const query = `
		INSERT INTO otps (user_id, purpose, code_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, purpose)
		DO UPDATE SET code_hash = EXCLUDED.code_hash,
		              expires_at = EXCLUDED.expires_at,
		              created_at = EXCLUDED.created_at`

	_, err := r.pool.Exec(ctx, query,
		rec.UserID, string(rec.Purpose), rec.CodeHash, rec.ExpiresAt, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert otp record: %w", err)
	}
	return nil
}

// GetRecord loads the record for (user, purpose).
func (r *OTPRepository) GetRecord(ctx context.Context, userID uuid.UUID, purpose otp.Purpose) (*otp.Record, error) {
	const query = `
		SELECT user_id, purpose, code_hash, expires_at, created_at
		FROM otps WHERE user_id = $1 AND purpose = $2`

	var rec otp.Record
	err := r.pool.QueryRow(ctx, query, userID, string(purpose)).Scan(
		&rec.UserID, &rec.Purpose, &rec.CodeHash, &rec.ExpiresAt, &rec.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, otp.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to load otp record: %w", err)
	}
	return &rec, nil
}

// DeleteRecord removes the record for (user, purpose). Deleting a
// missing record is not an error; consumption races resolve quietly.
func (r *OTPRepository) DeleteRecord(ctx context.Context, userID uuid.UUID, purpose otp.Purpose) error {
	const query = `DELETE FROM otps WHERE user_id = $1 AND purpose = $2`
	if _, err := r.pool.Exec(ctx, query, userID, string(purpose)); err != nil {
		return fmt.Errorf("failed to delete otp record: %w", err)
	}
	return nil
}

// DeleteExpired bulk-removes expired records across all purposes.
func (r *OTPRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM otps WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired otp records: %w", err)
	}
	return tag.RowsAffected(), nil
}
