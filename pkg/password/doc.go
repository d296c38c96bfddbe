// Package password provides one-way hashing and verification for user
// secrets using bcrypt.
//
// The same hasher is used for account passwords and for one-time codes so
// that neither is ever persisted in plaintext. Verification is
// constant-time by virtue of bcrypt's comparison; a malformed digest
// simply fails verification instead of surfacing an error to callers.
//
// # Usage
//
//	hasher := password.NewHasher()
//
//	digest, err := hasher.Hash("Aa1!aaaa")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if hasher.Verify("Aa1!aaaa", digest) {
//	    // secret matches
//	}
package password
