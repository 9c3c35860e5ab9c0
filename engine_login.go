package lockgate

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Login evaluates one primary-credential attempt. The outcome is exactly one
// of: success, success pending a second factor, a soft rejection, or a fatal
// collaborator error. The evaluation order is fixed: identifier resolution,
// record fetch, invalid gate, lock gate, then the credential check. A locked
// account is rejected before the hasher ever runs.
func (e *Engine) Login(ctx context.Context, identifier, secret string) (*Outcome, error) {
	if e == nil || e.store == nil || e.verifier == nil {
		return nil, ErrEngineNotReady
	}
	now := e.clock()

	if identifier == "" || secret == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, identifier, false, nil, func() map[string]string {
			return map[string]string{"reason": "missing_input"}
		})
		return &Outcome{
			Status:  OutcomeRejected,
			Reason:  ReasonCredentialMismatch,
			Message: msgMissingCredentials,
		}, nil
	}

	field := ResolveLookupField(identifier)

	rec, err := e.store.Find(ctx, field, identifier)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLogin, identifier, false, nil, func() map[string]string {
				return map[string]string{"reason": "user_not_found"}
			})
			return &Outcome{
				Status:         OutcomeRejected,
				Reason:         ReasonNotFound,
				Message:        msgInvalidCredentials,
				SignupFallback: e.config.Signup.FallbackEnabled,
			}, nil
		}
		return nil, fmt.Errorf("user store find: %w", err)
	}
	rec = rec.Clone()

	if rec.Invalid {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, rec.Name, false, nil, func() map[string]string {
			return map[string]string{"reason": "account_invalid"}
		})
		return &Outcome{
			Status:  OutcomeRejected,
			Reason:  ReasonAccountInvalid,
			Message: msgAccountInvalid,
		}, nil
	}

	if until, locked := e.policy.Gate(rec, now); locked {
		e.metricInc(MetricLoginLocked)
		e.emitAudit(ctx, auditEventLogin, rec.Name, false, nil, func() map[string]string {
			return map[string]string{"reason": "currently_locked"}
		})
		return &Outcome{
			Status:      OutcomeRejected,
			Reason:      ReasonAccountLocked,
			Message:     msgAccountLocked,
			LockedUntil: until,
		}, nil
	}

	ok, err := e.verifier.verify(ctx, secret, rec)
	if err != nil {
		e.emitAudit(ctx, auditEventLogin, rec.Name, false, err, nil)
		return nil, err
	}

	if !ok {
		return e.rejectCredential(ctx, rec, field, identifier, now)
	}

	if twoFactorRequired(rec) {
		if e.challenge == nil {
			return nil, ErrEngineNotReady
		}
		if err := e.challenge.issue(ctx, rec); err != nil {
			e.emitAudit(ctx, auditEventTwoFactorIssued, rec.Name, false, err, nil)
			return nil, err
		}

		e.metricInc(MetricTwoFactorIssued)
		e.emitAudit(ctx, auditEventTwoFactorIssued, rec.Name, true, nil, nil)

		// The login is suspended: no session finalization, no bookkeeping
		// change. The record is persisted again only once the code checks out.
		return &Outcome{
			Status:         OutcomeTwoFactorPending,
			TwoFactorEmail: rec.Email,
			User:           rec,
		}, nil
	}

	persisted, err := e.completeLogin(ctx, rec, field, identifier, now)
	if err != nil {
		e.emitAudit(ctx, auditEventLogin, rec.Name, false, err, nil)
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLogin, persisted.Name, true, nil, nil)

	return &Outcome{Status: OutcomeSuccess, User: persisted}, nil
}

// rejectCredential applies the failure transition, persists it, and shapes
// the mismatch outcome. The attempt is recorded before the rejection is
// returned; a persistence failure turns the rejection into a fatal error.
func (e *Engine) rejectCredential(ctx context.Context, rec *UserRecord, field LookupField, identifier string, now time.Time) (*Outcome, error) {
	apply := func(r *UserRecord) { e.policy.Failure(r, now) }
	apply(rec)

	persisted, err := e.updateWithRetry(ctx, rec, field, identifier, apply)
	if err != nil {
		e.emitAudit(ctx, auditEventLogin, rec.Name, false, err, nil)
		return nil, err
	}

	switch e.policy.State(persisted, now) {
	case StateLocked:
		e.metricInc(MetricLoginLocked)
		e.emitAudit(ctx, auditEventLogin, persisted.Name, false, nil, func() map[string]string {
			return map[string]string{"reason": "lock_triggered"}
		})
		return &Outcome{
			Status:      OutcomeRejected,
			Reason:      ReasonAccountLocked,
			Message:     fmt.Sprintf("Invalid user or password. Your account is now locked for %s.", e.policy.LockDuration()),
			LockedUntil: persisted.LockedUntil,
		}, nil

	case StateWarned:
		e.metricInc(MetricLoginWarned)
		e.emitAudit(ctx, auditEventLogin, persisted.Name, false, nil, func() map[string]string {
			return map[string]string{"reason": "password_mismatch_warned"}
		})
		return &Outcome{
			Status:  OutcomeRejected,
			Reason:  ReasonCredentialMismatch,
			Message: msgLockWarning,
			Warning: true,
		}, nil

	default:
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, persisted.Name, false, nil, func() map[string]string {
			return map[string]string{"reason": "password_mismatch"}
		})
		return &Outcome{
			Status:  OutcomeRejected,
			Reason:  ReasonCredentialMismatch,
			Message: msgInvalidCredentials,
		}, nil
	}
}

// completeLogin finalizes an accepted login and persists the record. Shared
// by the direct path and the two-factor verification path; both reset the
// lockout bookkeeping and shift the audit trail the same way.
func (e *Engine) completeLogin(ctx context.Context, rec *UserRecord, field LookupField, identifier string, now time.Time) (*UserRecord, error) {
	ip := clientIPFromContext(ctx)
	apply := func(r *UserRecord) { finalizeLogin(e.policy, r, now, ip) }
	apply(rec)

	return e.updateWithRetry(ctx, rec, field, identifier, apply)
}
