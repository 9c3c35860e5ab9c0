package lockgate

import "time"

// finalizeLogin commits the "now authenticated" transition on rec: the audit
// trail shifts forward one slot, the login markers are stamped, and the
// lockout bookkeeping resets. The caller persists the record; success is
// only reported after that write is confirmed.
func finalizeLogin(policy *LockoutPolicy, rec *UserRecord, now time.Time, clientAddress string) {
	// First login has no prior value; seed the previous slot with the
	// current attempt so the trail never carries zero values forward.
	if rec.CurrentLoginTime.IsZero() {
		rec.PreviousLoginTime = now
	} else {
		rec.PreviousLoginTime = rec.CurrentLoginTime
	}
	if rec.CurrentLoginIP == "" {
		rec.PreviousLoginIP = clientAddress
	} else {
		rec.PreviousLoginIP = rec.CurrentLoginIP
	}

	rec.CurrentLoginTime = now
	rec.CurrentLoginIP = clientAddress
	rec.LoggedIn = true

	policy.Success(rec)
}

// finalizeLogout commits the logged-out transition. Idempotent: applying it
// to an already-logged-out record is a no-op beyond clearing the flag.
func finalizeLogout(rec *UserRecord) {
	rec.LoggedIn = false
}
