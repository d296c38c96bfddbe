// Package tokens mints and validates the signed JWTs used for API access.
//
// Two token classes exist. Access tokens are short-lived and stateless:
// they are never checked against the revocation denylist, so their TTL is
// the only bound on their lifetime. Refresh tokens are long-lived and carry
// a unique jti claim that serves as the revocation key; the orchestration
// layer consults the denylist before honoring one.
//
// Both classes are signed with HMAC-SHA256 over a shared server secret.
// Decode pins the algorithm to HS256 to prevent algorithm confusion and
// collapses every failure mode (bad signature, malformed structure, expired
// claims) into ErrInvalidToken so callers cannot leak the distinction.
//
// # Usage
//
//	svc, err := tokens.New(tokens.Config{
//	    Secret:     "change-me-in-production",
//	    Issuer:     "authsvc",
//	    AccessTTL:  15 * time.Minute,
//	    RefreshTTL: 7 * 24 * time.Hour,
//	})
//
//	access, err := svc.IssueAccess(userID.String())
//	refresh, jti, err := svc.IssueRefresh(userID.String())
//
//	claims, err := svc.Decode(access)
package tokens
