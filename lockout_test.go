package lockgate

import (
	"testing"
	"time"
)

func testPolicy() *LockoutPolicy {
	return NewLockoutPolicy(LockoutConfig{
		LockThreshold: 5,
		WarnThreshold: 3,
		LockDuration:  20 * time.Minute,
	})
}

func TestLockoutFailureProgression(t *testing.T) {
	policy := testPolicy()
	rec := &UserRecord{}
	now := testStart

	want := []LockState{StateActive, StateActive, StateWarned, StateWarned, StateLocked}
	for i, state := range want {
		got := policy.Failure(rec, now)
		if got != state {
			t.Fatalf("failure %d: state = %d, want %d", i+1, got, state)
		}
		if rec.FailedAttempts != i+1 {
			t.Fatalf("failure %d: attempts = %d", i+1, rec.FailedAttempts)
		}
	}

	if !rec.Locked {
		t.Fatalf("record not locked at threshold")
	}
	if want := now.Add(20 * time.Minute); !rec.LockedUntil.Equal(want) {
		t.Fatalf("LockedUntil = %v, want %v", rec.LockedUntil, want)
	}
}

func TestLockoutGate(t *testing.T) {
	policy := testPolicy()
	rec := &UserRecord{
		Locked:      true,
		LockedUntil: testStart.Add(10 * time.Minute),
	}

	until, locked := policy.Gate(rec, testStart)
	if !locked {
		t.Fatalf("gate open during lock window")
	}
	if !until.Equal(rec.LockedUntil) {
		t.Fatalf("until = %v", until)
	}

	// Lazy expiry: the stored flag is stale but the gate opens.
	if _, locked := policy.Gate(rec, rec.LockedUntil); locked {
		t.Fatalf("gate closed at the deadline")
	}
	if _, locked := policy.Gate(rec, rec.LockedUntil.Add(time.Second)); locked {
		t.Fatalf("gate closed after the deadline")
	}
}

func TestLockoutStateLazyExpiry(t *testing.T) {
	policy := testPolicy()
	rec := &UserRecord{
		FailedAttempts: 5,
		Locked:         true,
		LockedUntil:    testStart.Add(10 * time.Minute),
	}

	if got := policy.State(rec, testStart); got != StateLocked {
		t.Fatalf("state during window = %d", got)
	}
	// Past the deadline the same record reads as warned: the counter is
	// still at threshold but the lock no longer applies.
	if got := policy.State(rec, rec.LockedUntil.Add(time.Second)); got != StateWarned {
		t.Fatalf("state after window = %d", got)
	}
}

func TestLockoutFailureClearsExpiredLock(t *testing.T) {
	policy := testPolicy()
	rec := &UserRecord{
		FailedAttempts: 3,
		Locked:         true,
		LockedUntil:    testStart.Add(-time.Minute),
	}

	state := policy.Failure(rec, testStart)
	if state != StateWarned {
		t.Fatalf("state = %d, want warned", state)
	}
	if rec.Locked || !rec.LockedUntil.IsZero() {
		t.Fatalf("expired lock not cleared: locked=%v until=%v", rec.Locked, rec.LockedUntil)
	}
}

func TestLockoutSuccessResets(t *testing.T) {
	policy := testPolicy()
	rec := &UserRecord{
		FailedAttempts: 4,
		Locked:         true,
		LockedUntil:    testStart.Add(time.Hour),
	}

	policy.Success(rec)

	if rec.FailedAttempts != 0 || rec.Locked || !rec.LockedUntil.IsZero() {
		t.Fatalf("success did not reset: %+v", rec)
	}
}

func TestLockoutRelockAfterExpiry(t *testing.T) {
	policy := testPolicy()
	rec := &UserRecord{
		FailedAttempts: 5,
		Locked:         true,
		LockedUntil:    testStart.Add(-time.Minute),
	}

	state := policy.Failure(rec, testStart)
	if state != StateLocked {
		t.Fatalf("state = %d, want re-locked", state)
	}
	if want := testStart.Add(20 * time.Minute); !rec.LockedUntil.Equal(want) {
		t.Fatalf("LockedUntil = %v, want %v", rec.LockedUntil, want)
	}
}
