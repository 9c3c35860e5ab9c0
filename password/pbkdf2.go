package password

import (
	"context"
	"crypto/rand"
	"crypto/sha1"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/pbkdf2"
)

// DefaultIterations is the PBKDF2 cost used when a record carries no
// iteration count of its own.
const DefaultIterations = 10

const (
	digestLength = 20
	saltLength   = 16
)

// ErrEmptySalt is returned when a record's salt is missing. Hashing with an
// empty salt would silently collapse every account onto one digest family.
var ErrEmptySalt = errors.New("password: salt must not be empty")

// PBKDF2Hasher derives hex-encoded PBKDF2-SHA1 digests.
type PBKDF2Hasher struct {
	iterations int
}

// NewPBKDF2Hasher creates a hasher with the given default iteration count.
// iterations <= 0 selects [DefaultIterations].
func NewPBKDF2Hasher(iterations int) *PBKDF2Hasher {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &PBKDF2Hasher{iterations: iterations}
}

// Hash derives the digest for secret under salt. A per-record iteration
// count overrides the hasher default, so records hashed at different costs
// coexist in one store.
func (h *PBKDF2Hasher) Hash(ctx context.Context, secret, salt string, iterations int) (string, error) {
	if salt == "" {
		return "", ErrEmptySalt
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if iterations <= 0 {
		iterations = h.iterations
	}

	key := pbkdf2.Key([]byte(secret), []byte(salt), iterations, digestLength, sha1.New)
	return hex.EncodeToString(key), nil
}

// GenerateSalt returns a fresh random hex salt suitable for new records.
func GenerateSalt() (string, error) {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
