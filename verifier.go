package lockgate

import (
	"context"
	"crypto/subtle"
	"fmt"
)

// credentialVerifier checks a submitted secret against a record's stored
// digest. It has no side effects beyond the hasher call; the caller is
// responsible for having cleared the invalid and lock gates first.
type credentialVerifier struct {
	hasher PasswordHasher
}

// verify recomputes the digest and compares in constant time. A hasher error
// (malformed salt, backend failure) is fatal for the request and is never
// reported as a wrong credential.
func (v *credentialVerifier) verify(ctx context.Context, secret string, rec *UserRecord) (bool, error) {
	digest, err := v.hasher.Hash(ctx, secret, rec.Salt, rec.HashIterations)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrHasherFailure, err)
	}

	return subtle.ConstantTimeCompare([]byte(digest), []byte(rec.Digest)) == 1, nil
}
