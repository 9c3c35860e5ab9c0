package lockgate

import "time"

// LockState is the lockout machine's position for one record at one instant.
type LockState int

const (
	// StateActive means attempts are evaluated normally.
	StateActive LockState = iota
	// StateWarned means the warn threshold was reached; mismatch outcomes
	// carry a warning until the account locks or a success resets it.
	StateWarned
	// StateLocked means attempts are rejected without touching the hasher.
	StateLocked
)

// LockoutPolicy computes lockout transitions from evaluation outcomes. It is
// a pure function of the record snapshot and the attempt time; persistence
// is the caller's job. The machine is re-entrant per attempt and has no
// terminal state; permanent invalidation is the unrelated Invalid flag.
type LockoutPolicy struct {
	lockThreshold int
	warnThreshold int
	lockDuration  time.Duration
}

// NewLockoutPolicy builds a policy from a validated [LockoutConfig].
func NewLockoutPolicy(cfg LockoutConfig) *LockoutPolicy {
	return &LockoutPolicy{
		lockThreshold: cfg.LockThreshold,
		warnThreshold: cfg.WarnThreshold,
		lockDuration:  cfg.LockDuration,
	}
}

// State derives the machine state from the record's current fields. A lock
// whose deadline has passed reads as Active/Warned even though the Locked
// flag has not been rewritten yet (lazy unlock).
func (p *LockoutPolicy) State(rec *UserRecord, now time.Time) LockState {
	if rec.Locked && now.Before(rec.LockedUntil) {
		return StateLocked
	}
	if rec.FailedAttempts >= p.warnThreshold {
		return StateWarned
	}
	return StateActive
}

// Gate reports whether an attempt must be rejected before credential
// verification, and until when. This is the only check allowed to run ahead
// of the hasher: rejecting here avoids leaking hasher timing during a
// lockout window.
func (p *LockoutPolicy) Gate(rec *UserRecord, now time.Time) (time.Time, bool) {
	if rec.Locked && now.Before(rec.LockedUntil) {
		return rec.LockedUntil, true
	}
	return time.Time{}, false
}

// Failure applies the failed-attempt transition to rec and returns the
// resulting state. Reaching the lock threshold sets Locked and stamps
// LockedUntil exactly lockDuration past the attempt time.
func (p *LockoutPolicy) Failure(rec *UserRecord, now time.Time) LockState {
	rec.FailedAttempts++

	if rec.FailedAttempts >= p.lockThreshold {
		rec.Locked = true
		rec.LockedUntil = now.Add(p.lockDuration)
		return StateLocked
	}

	// An expired lock is cleared on the first post-deadline failure so the
	// stored flag catches up with the lazy-unlock view.
	rec.Locked = false
	rec.LockedUntil = time.Time{}

	if rec.FailedAttempts >= p.warnThreshold {
		return StateWarned
	}
	return StateActive
}

// Success applies the successful-completion transition: counter to zero,
// lock cleared. Runs for both primary and two-factor completions.
func (p *LockoutPolicy) Success(rec *UserRecord) {
	rec.FailedAttempts = 0
	rec.Locked = false
	rec.LockedUntil = time.Time{}
}

// LockDuration exposes the configured lock span for message formatting.
func (p *LockoutPolicy) LockDuration() time.Duration {
	return p.lockDuration
}
