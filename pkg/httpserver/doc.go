// Package httpserver wraps net/http with graceful shutdown, env-driven
// timeouts and a health-check handler.
//
// Run blocks until the context is cancelled, an interrupt or TERM
// signal arrives, or the listener fails. Shutdown drains in-flight
// requests within the configured deadline. Failures wrap the ErrStart
// and ErrShutdown sentinels for errors.Is matching.
package httpserver
