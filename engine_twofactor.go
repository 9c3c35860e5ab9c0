package lockgate

import (
	"context"
	"errors"
	"fmt"
)

// VerifyTwoFactor evaluates the second call of the two-factor protocol: the
// identifier names the account whose login is pending and token is the code
// the user received. The engine holds no challenge state between the two
// calls, so any verification request is checked against the current record.
//
// Every rejection is uniform: wrong code, expired code, unknown identifier,
// and invalidated account all yield the same challenge-invalid outcome, and
// all of them destroy the caller's session handle. The verification surface
// never discloses whether an account exists.
func (e *Engine) VerifyTwoFactor(ctx context.Context, identifier, token string) (*Outcome, error) {
	if e == nil || e.store == nil || e.challenge == nil {
		return nil, ErrEngineNotReady
	}
	now := e.clock()

	reject := func(user, cause string) (*Outcome, error) {
		if err := e.destroySession(ctx); err != nil {
			return nil, err
		}
		e.metricInc(MetricTwoFactorFailure)
		e.emitAudit(ctx, auditEventTwoFactor, user, false, nil, func() map[string]string {
			return map[string]string{"reason": cause}
		})
		return &Outcome{
			Status:  OutcomeRejected,
			Reason:  ReasonChallengeInvalid,
			Message: msgChallengeInvalid,
		}, nil
	}

	if identifier == "" || token == "" {
		return reject(identifier, "missing_input")
	}

	field := ResolveLookupField(identifier)

	rec, err := e.store.Find(ctx, field, identifier)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return reject(identifier, "user_not_found")
		}
		return nil, fmt.Errorf("user store find: %w", err)
	}
	rec = rec.Clone()

	if rec.Invalid {
		return reject(rec.Name, "account_invalid")
	}

	if !e.challenge.check(token, rec) {
		// A failed challenge does not advance the failed-attempt counter;
		// only primary-credential mismatches feed the lockout machine.
		return reject(rec.Name, "token_invalid")
	}

	persisted, err := e.completeLogin(ctx, rec, field, identifier, now)
	if err != nil {
		e.emitAudit(ctx, auditEventTwoFactor, rec.Name, false, err, nil)
		return nil, err
	}

	e.metricInc(MetricTwoFactorSuccess)
	e.emitAudit(ctx, auditEventTwoFactor, persisted.Name, true, nil, nil)

	return &Outcome{Status: OutcomeSuccess, User: persisted}, nil
}
