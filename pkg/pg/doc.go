// Package pg wires the service to PostgreSQL: pgxpool connection setup
// with retry, goose schema migrations, and error classification helpers
// used by the storage layer.
package pg
