package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"time"
)

// tagLength is the truncated HMAC-SHA256 tag size in bytes.
const tagLength = 16

// futureSkew is how far ahead of the verifier's clock an issue timestamp may
// sit before the token is rejected outright.
const futureSkew = 30 * time.Second

// ErrEmptySalt is returned when a token is requested for a record without
// salt material.
var ErrEmptySalt = errors.New("token: salt must not be empty")

// now is swapped in tests to pin token age.
var now = time.Now

// Codec generates and verifies salt-bound, time-boxed tokens. The wire form
// is hex(issue_unix_be64 || hmac_sha256(salt, issue_unix_be64)[:16]).
type Codec struct{}

// New returns a Codec. The codec is stateless and safe for concurrent use.
func New() *Codec {
	return &Codec{}
}

// Generate derives a token bound to salt at the current instant. The window
// argument is unused at generation time; age is enforced entirely by Verify,
// so an already-issued token's lifetime follows the verifier's window.
func (c *Codec) Generate(salt string, window time.Duration) (string, error) {
	if salt == "" {
		return "", ErrEmptySalt
	}

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(now().Unix()))

	raw := make([]byte, 0, 8+tagLength)
	raw = append(raw, ts[:]...)
	raw = append(raw, tag(salt, ts)...)

	return hex.EncodeToString(raw), nil
}

// Verify checks the token's authenticity against salt and its age against
// window. The MAC is compared in constant time before the timestamp is
// trusted; a token older than window, or further than a small skew into the
// future, is rejected.
func (c *Codec) Verify(token, salt string, window time.Duration) bool {
	if salt == "" || window <= 0 {
		return false
	}

	raw, err := hex.DecodeString(token)
	if err != nil || len(raw) != 8+tagLength {
		return false
	}

	var ts [8]byte
	copy(ts[:], raw[:8])
	if !hmac.Equal(tag(salt, ts), raw[8:]) {
		return false
	}

	issued := time.Unix(int64(binary.BigEndian.Uint64(ts[:])), 0)
	current := now()
	if issued.After(current.Add(futureSkew)) {
		return false
	}
	return current.Sub(issued) <= window
}

func tag(salt string, ts [8]byte) []byte {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write(ts[:])
	return mac.Sum(nil)[:tagLength]
}
