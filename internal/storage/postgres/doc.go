// Package postgres implements the storage interfaces consumed by the
// auth flows (auth.UserStorage, auth.TokenDenylist, otp.Storage) on top
// of a pgx connection pool.
//
// Repositories translate driver errors into the consumers' sentinels:
// pgx.ErrNoRows becomes the package's not-found error, unique-violation
// becomes taken/already-revoked semantics. Uniqueness and upsert
// atomicity live in the schema (see internal/db/migrations), not in
// application-level read-then-write sequences.
package postgres
