package lockgate

import (
	"context"
	"time"
)

// LookupField selects which unique identity field a [UserStore.Find] call
// matches against.
type LookupField string

const (
	// FieldName looks a record up by its unique account name.
	FieldName LookupField = "name"
	// FieldEmail looks a record up by its unique email address.
	FieldEmail LookupField = "email"
)

// UserRecord is the mutable authentication state for one principal, owned by
// the external store. The engine reads a snapshot per request, computes a new
// snapshot, and issues a single write-back; it never creates or deletes
// records.
type UserRecord struct {
	Name  string
	Email string

	// Credential material. Salt feeds both the password hasher and the
	// two-factor token derivation; Digest is compared, never stored in clear.
	Salt   string
	Digest string

	// HashIterations is the cost parameter for the hasher. Zero means use
	// the hasher's default.
	HashIterations int

	FailedAttempts int
	Locked         bool
	LockedUntil    time.Time

	// Invalid permanently blocks authentication. Nothing in this package
	// ever flips it back to false.
	Invalid bool

	TwoFactorEnabled bool
	LoggedIn         bool

	CurrentLoginTime  time.Time
	CurrentLoginIP    string
	PreviousLoginTime time.Time
	PreviousLoginIP   string

	// Version is the optimistic-concurrency token compared by
	// [UserStore.Update]. A stale version yields [ErrVersionConflict].
	Version uint64
}

// Clone returns a deep copy of the record. The engine works on copies so a
// failed write-back never leaves a half-mutated shared snapshot behind.
func (r *UserRecord) Clone() *UserRecord {
	if r == nil {
		return nil
	}
	out := *r
	return &out
}

// UserStore is the persistence collaborator. Find returns [ErrUserNotFound]
// when nothing matches. Update persists the record if its Version is still
// current, returning the persisted record with an advanced Version, or
// [ErrVersionConflict] when another writer got there first.
type UserStore interface {
	Find(ctx context.Context, field LookupField, value string) (*UserRecord, error)
	Update(ctx context.Context, record *UserRecord) (*UserRecord, error)
}

// PasswordHasher derives a digest from a secret, salt, and iteration count.
// iterations <= 0 selects the hasher's default cost.
type PasswordHasher interface {
	Hash(ctx context.Context, secret, salt string, iterations int) (string, error)
}

// TokenCodec derives and checks time-boxed one-time tokens bound to a
// record's salt. Verify must tolerate the small clock skew implied by the
// generator; tokens older than the validity window are rejected.
type TokenCodec interface {
	Generate(salt string, window time.Duration) (string, error)
	Verify(token, salt string, window time.Duration) bool
}

// Mailer delivers a two-factor code to a recipient. The engine only needs a
// success/failure signal; delivery tracking beyond that is the mailer's
// concern.
type Mailer interface {
	SendTwoFactorCode(ctx context.Context, recipientName, recipientEmail, token string) error
}

// SessionStore destroys the presentation layer's session state for a
// request. The handle travels in context via [WithSessionHandle].
type SessionStore interface {
	Destroy(ctx context.Context, handle string) error
}

// OutcomeStatus tags the overall result of a pipeline operation.
type OutcomeStatus int

const (
	// OutcomeRejected is a soft failure; Reason says why.
	OutcomeRejected OutcomeStatus = iota
	// OutcomeSuccess means the record was persisted as authenticated (or
	// logged out, for Logout).
	OutcomeSuccess
	// OutcomeTwoFactorPending means the primary credential was accepted and
	// a code was delivered; the login completes via VerifyTwoFactor.
	OutcomeTwoFactorPending
)

// RejectReason classifies a soft failure.
type RejectReason int

const (
	// ReasonNone is the zero reason carried by non-rejected outcomes.
	ReasonNone RejectReason = iota
	// ReasonNotFound means the identifier matched no record.
	ReasonNotFound
	// ReasonAccountInvalid means the account is permanently invalidated.
	ReasonAccountInvalid
	// ReasonAccountLocked means the lockout window is (or just became) active.
	ReasonAccountLocked
	// ReasonCredentialMismatch means the secret did not match.
	ReasonCredentialMismatch
	// ReasonChallengeInvalid means the two-factor code was wrong, expired,
	// or the verification request could not be correlated to an account.
	ReasonChallengeInvalid
)

// Outcome is the tagged result of one pipeline operation. Soft failures ride
// here; collaborator failures are returned as errors instead.
type Outcome struct {
	Status OutcomeStatus
	Reason RejectReason

	// Message is a default human-readable description of a rejection. The
	// presentation layer may replace it; the engine never renders markup.
	Message string

	// Warning is set on a credential mismatch once the warn threshold is
	// reached, before the account locks.
	Warning bool

	// LockedUntil accompanies ReasonAccountLocked.
	LockedUntil time.Time

	// User is the persisted record snapshot on success.
	User *UserRecord

	// TwoFactorEmail is the address a pending two-factor code was sent to.
	TwoFactorEmail string

	// SignupFallback flags a not-found rejection the presentation layer may
	// reroute to its signup flow. Only set when Signup.FallbackEnabled.
	SignupFallback bool
}

// Rejected reports whether the outcome is a soft failure.
func (o *Outcome) Rejected() bool {
	return o != nil && o.Status == OutcomeRejected
}
