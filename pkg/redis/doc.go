// Package redis provides the Redis connection helper used by the
// Redis-backed rate-limit and OAuth-state stores.
package redis
