// Package ratelimiter provides sliding-window attempt limiting keyed by
// identifier strings such as "otp_verify:user@example.com".
//
// The limiter counts weighted attempts whose timestamp falls strictly
// within the trailing window. Checking and recording are separate
// operations: Check never consumes budget, so callers decide on which
// terminal paths an attempt counts. The auth flows record on every
// terminal path, including "user not found", to keep rate-limit behavior
// from leaking account existence.
//
// # Basic Usage
//
//	store := ratelimiter.NewMemoryStore()
//	limiter := ratelimiter.New(store)
//
//	res, err := limiter.Check(ctx, "login:"+email, ratelimiter.Policy{
//		MaxAttempts: 5,
//		Window:      15 * time.Minute,
//	})
//	if err != nil {
//		return err
//	}
//	if !res.Allowed {
//		// reject with res.RetryAfter
//	}
//	if err := limiter.Record(ctx, "login:"+email); err != nil {
//		return err
//	}
//
// MemoryStore keeps windows in a mutex-guarded map and prunes stale
// identifiers opportunistically. RedisStore keeps them in sorted sets for
// deployments where multiple instances must share one budget.
package ratelimiter
