package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSessionStoreIssueOwnerDestroy(t *testing.T) {
	sessions := NewSessionStore(testClient(t), "", time.Hour)
	ctx := context.Background()

	handle, err := sessions.Issue(ctx, "john")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if handle == "" {
		t.Fatalf("empty handle")
	}

	owner, err := sessions.Owner(ctx, handle)
	if err != nil {
		t.Fatalf("Owner: %v", err)
	}
	if owner != "john" {
		t.Fatalf("owner = %q", owner)
	}

	if err := sessions.Destroy(ctx, handle); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if _, err := sessions.Owner(ctx, handle); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Owner after destroy: %v", err)
	}
}

func TestSessionStoreDestroyIdempotent(t *testing.T) {
	sessions := NewSessionStore(testClient(t), "", time.Hour)

	if err := sessions.Destroy(context.Background(), "no-such-handle"); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
}

func TestSessionStoreExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := NewSessionStore(client, "", time.Minute)
	ctx := context.Background()

	handle, err := sessions.Issue(ctx, "john")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := sessions.Owner(ctx, handle); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Owner after expiry: %v", err)
	}
}
