package lockgate

import (
	"context"
	"testing"
)

func TestLogout(t *testing.T) {
	user := testUser()
	user.LoggedIn = true
	rig := newTestRig(t, user)

	ctx := WithSessionHandle(context.Background(), "sess-9")
	out, err := rig.engine.Logout(ctx, "john")
	if err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if out.Status != OutcomeSuccess {
		t.Fatalf("status = %d", out.Status)
	}

	stored := rig.store.get("john")
	if stored.LoggedIn {
		t.Fatalf("record still logged in")
	}
	if got := rig.sessions.destroyedHandles(); len(got) != 1 || got[0] != "sess-9" {
		t.Fatalf("destroyed handles = %v", got)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	rig := newTestRig(t, testUser())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		out, err := rig.engine.Logout(ctx, "john")
		if err != nil {
			t.Fatalf("Logout #%d: %v", i+1, err)
		}
		if out.Status != OutcomeSuccess {
			t.Fatalf("Logout #%d status = %d", i+1, out.Status)
		}
	}
}

func TestLogoutUnknownUser(t *testing.T) {
	rig := newTestRig(t, testUser())

	out, err := rig.engine.Logout(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Logout: %v", err)
	}
	mustRejected(t, out, ReasonNotFound)
}

func TestLogoutPersistsBeforeSessionTeardown(t *testing.T) {
	user := testUser()
	user.LoggedIn = true
	rig := newTestRig(t, user)
	rig.sessions.err = errBoom

	ctx := WithSessionHandle(context.Background(), "sess-9")
	_, err := rig.engine.Logout(ctx, "john")
	mustErrorIs(t, err, ErrSessionDestroy)

	// The record write happens first, so even a session-store failure never
	// leaves a live session for a record that still reads as logged in.
	if stored := rig.store.get("john"); stored.LoggedIn {
		t.Fatalf("record still logged in after failed teardown")
	}
}

func TestLogoutWithoutSessionHandle(t *testing.T) {
	user := testUser()
	user.LoggedIn = true
	rig := newTestRig(t, user)

	out, err := rig.engine.Logout(context.Background(), "john")
	if err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if out.Status != OutcomeSuccess {
		t.Fatalf("status = %d", out.Status)
	}
	if got := rig.sessions.destroyedHandles(); len(got) != 0 {
		t.Fatalf("destroyed handles = %v", got)
	}
}
