package lockgate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Default soft-failure messages. They mirror the wording the presentation
// layer shipped with historically; callers are free to replace them when
// rendering an Outcome.
const (
	msgMissingCredentials = "Please enter your email/username and password"
	msgInvalidCredentials = "Invalid user or password"
	msgAccountInvalid     = "The account is invalid"
	msgAccountLocked      = "The account is temporarily locked"
	msgLockWarning        = "Invalid user or password. Your account will be locked soon."
	msgChallengeInvalid   = "The authorization code is invalid"
)

const (
	auditEventLogin           = "login"
	auditEventTwoFactorIssued = "login.two_factor_issued"
	auditEventTwoFactor       = "login.two_factor"
	auditEventLogout          = "logout"
)

// storeConflictRetries bounds how often an update is retried after a
// version conflict before the request fails.
const storeConflictRetries = 3

// Engine orchestrates the authentication pipeline. Build one through
// [Builder.Build]; a zero Engine is not usable.
type Engine struct {
	config    Config
	store     UserStore
	sessions  SessionStore
	policy    *LockoutPolicy
	verifier  *credentialVerifier
	challenge *twoFactorChallenge
	audit     *auditDispatcher
	metrics   *Metrics

	// clock is swappable in tests; everything time-dependent goes through it.
	clock func() time.Time
}

// Close shuts down the audit dispatcher, draining buffered events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns how many audit events were dropped because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, eventType, user string, success bool, opErr error, metadata func() map[string]string) {
	if e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: e.clock(),
		EventType: eventType,
		EventID:   uuid.NewString(),
		User:      user,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}

// updateWithRetry persists rec, re-fetching and re-applying the transition
// when another writer advanced the record's version first. apply must be
// safe to re-run against a fresh snapshot; the bounded retry keeps the
// lockout bookkeeping race-free without unbounded spinning.
func (e *Engine) updateWithRetry(ctx context.Context, rec *UserRecord, field LookupField, identifier string, apply func(*UserRecord)) (*UserRecord, error) {
	current := rec
	for attempt := 0; attempt <= storeConflictRetries; attempt++ {
		persisted, err := e.store.Update(ctx, current)
		if err == nil {
			return persisted, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, fmt.Errorf("user store update: %w", err)
		}

		e.metricInc(MetricStoreConflictRetry)

		fresh, findErr := e.store.Find(ctx, field, identifier)
		if findErr != nil {
			return nil, fmt.Errorf("user store refetch: %w", findErr)
		}
		apply(fresh)
		current = fresh
	}

	return nil, ErrConflictRetriesExhausted
}

// destroySession tears down the caller's session handle, when one was
// attached to the context. A destroy failure is a collaborator failure.
func (e *Engine) destroySession(ctx context.Context) error {
	handle := sessionHandleFromContext(ctx)
	if handle == "" || e.sessions == nil {
		return nil
	}
	if err := e.sessions.Destroy(ctx, handle); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionDestroy, err)
	}
	return nil
}
