package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned by Owner when the handle does not exist or
// has expired.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps presentation-layer session handles in Redis. It
// implements [lockgate.SessionStore] on the destroy side and additionally
// issues handles so callers do not need a second session system.
type SessionStore struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewSessionStore creates a SessionStore. ttl <= 0 selects 24 hours.
func NewSessionStore(client redis.UniversalClient, prefix string, ttl time.Duration) *SessionStore {
	if prefix == "" {
		prefix = "lockgate"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{redis: client, prefix: prefix, ttl: ttl}
}

func (s *SessionStore) key(handle string) string {
	return s.prefix + ":session:" + handle
}

// Issue creates a fresh handle mapped to the account name.
func (s *SessionStore) Issue(ctx context.Context, name string) (string, error) {
	handle := uuid.NewString()
	if err := s.redis.Set(ctx, s.key(handle), name, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return handle, nil
}

// Owner resolves a handle back to the account name it was issued for.
func (s *SessionStore) Owner(ctx context.Context, handle string) (string, error) {
	name, err := s.redis.Get(ctx, s.key(handle)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return name, nil
}

// Destroy implements [lockgate.SessionStore]. Destroying a handle that no
// longer exists is a no-op.
func (s *SessionStore) Destroy(ctx context.Context, handle string) error {
	if err := s.redis.Del(ctx, s.key(handle)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
