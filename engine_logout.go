package lockgate

import (
	"context"
	"errors"
	"fmt"
)

// Logout clears the record's logged-in marker and destroys the caller's
// session handle. The record write lands before the session is torn down, so
// a session-store failure never leaves a destroyed session paired with a
// still-logged-in record. Logging out an already-logged-out account succeeds;
// the operation is idempotent.
func (e *Engine) Logout(ctx context.Context, identifier string) (*Outcome, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	field := ResolveLookupField(identifier)

	rec, err := e.store.Find(ctx, field, identifier)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.emitAudit(ctx, auditEventLogout, identifier, false, nil, func() map[string]string {
				return map[string]string{"reason": "user_not_found"}
			})
			return &Outcome{
				Status: OutcomeRejected,
				Reason: ReasonNotFound,
			}, nil
		}
		return nil, fmt.Errorf("user store find: %w", err)
	}
	rec = rec.Clone()

	apply := func(r *UserRecord) { finalizeLogout(r) }
	apply(rec)

	persisted, err := e.updateWithRetry(ctx, rec, field, identifier, apply)
	if err != nil {
		e.emitAudit(ctx, auditEventLogout, rec.Name, false, err, nil)
		return nil, err
	}

	if err := e.destroySession(ctx); err != nil {
		e.emitAudit(ctx, auditEventLogout, persisted.Name, false, err, nil)
		return nil, err
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, persisted.Name, true, nil, nil)

	return &Outcome{Status: OutcomeSuccess, User: persisted}, nil
}
