// Package oauthstate manages the one-time CSRF state tokens that bind an
// OAuth authorization redirect to its callback.
//
// A state is valid for consumption exactly once and only inside its expiry
// window. ValidateAndConsume is atomic: the check and the consumed mark
// happen under one critical section (memory) or one GETDEL (Redis), so two
// concurrent callbacks can never both succeed with the same state.
//
// MemoryManager is the single-instance default; RedisManager externalizes
// the table for deployments with multiple replicas behind one redirect URL.
//
// # Usage
//
//	mgr := oauthstate.NewMemoryManager()
//
//	state, err := mgr.Create(ctx)
//	// embed state in the authorization URL
//
//	ok, err := mgr.ValidateAndConsume(ctx, callbackState)
//	if !ok {
//		// unknown, already used, or expired - reject the callback
//	}
package oauthstate
