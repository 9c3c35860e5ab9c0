package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/lockgate-dev/lockgate"
)

// ErrRedisUnavailable wraps transport-level Redis failures so callers can
// distinguish an unreachable store from a missing or conflicting record.
var ErrRedisUnavailable = errors.New("redis unavailable")

const (
	updateStatusNotFound int64 = 0
	updateStatusConflict int64 = 1
	updateStatusUpdated  int64 = 2
)

// updateUserScript compares the stored version with the caller's snapshot
// version and replaces the record only when they still match. The version
// lives in its own hash field so the comparison never parses the JSON blob.
const updateUserScript = `
local current = redis.call("HGET", KEYS[1], "version")
if not current then
  return 0
end
if current ~= ARGV[1] then
  return 1
end
redis.call("HSET", KEYS[1], "data", ARGV[2], "version", ARGV[3])
return 2
`

var updateUserLua = redis.NewScript(updateUserScript)

// UserStore is a Redis-backed [lockgate.UserStore]. Records are stored as a
// hash of {data: JSON, version: counter} under a per-name key, with a plain
// email-to-name index key for address lookups.
type UserStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewUserStore creates a UserStore on the given client. prefix namespaces
// every key; empty selects "lockgate".
func NewUserStore(client redis.UniversalClient, prefix string) *UserStore {
	if prefix == "" {
		prefix = "lockgate"
	}
	return &UserStore{redis: client, prefix: prefix}
}

func (s *UserStore) userKey(name string) string {
	return s.prefix + ":user:" + name
}

func (s *UserStore) emailKey(email string) string {
	return s.prefix + ":email:" + email
}

// Find implements [lockgate.UserStore]. Email lookups resolve the index key
// first and then load the record by name.
func (s *UserStore) Find(ctx context.Context, field lockgate.LookupField, value string) (*lockgate.UserRecord, error) {
	name := value
	if field == lockgate.FieldEmail {
		resolved, err := s.redis.Get(ctx, s.emailKey(value)).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil, lockgate.ErrUserNotFound
			}
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		name = resolved
	}

	fields, err := s.redis.HMGet(ctx, s.userKey(name), "data", "version").Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	data, ok := fields[0].(string)
	if !ok || data == "" {
		return nil, lockgate.ErrUserNotFound
	}

	var rec lockgate.UserRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decoding user record %q: %w", name, err)
	}

	// The hash field is the authoritative version; the copy inside the JSON
	// blob is informational.
	if raw, ok := fields[1].(string); ok {
		version, parseErr := strconv.ParseUint(raw, 10, 64)
		if parseErr != nil {
			return nil, fmt.Errorf("decoding user record %q version: %w", name, parseErr)
		}
		rec.Version = version
	}

	return &rec, nil
}

// Update implements [lockgate.UserStore]: a single compare-and-swap against
// the record's snapshot version. On success the returned record carries the
// advanced version.
func (s *UserStore) Update(ctx context.Context, record *lockgate.UserRecord) (*lockgate.UserRecord, error) {
	next := record.Clone()
	next.Version = record.Version + 1

	data, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("encoding user record %q: %w", record.Name, err)
	}

	status, err := updateUserLua.Run(
		ctx,
		s.redis,
		[]string{s.userKey(record.Name)},
		strconv.FormatUint(record.Version, 10),
		data,
		strconv.FormatUint(next.Version, 10),
	).Int64()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	switch status {
	case updateStatusUpdated:
		return next, nil
	case updateStatusConflict:
		return nil, lockgate.ErrVersionConflict
	case updateStatusNotFound:
		return nil, lockgate.ErrUserNotFound
	default:
		return nil, fmt.Errorf("%w: unknown update script status %d", ErrRedisUnavailable, status)
	}
}

// Save writes a record unconditionally and refreshes its email index. Meant
// for provisioning and tests; the engine itself only ever calls Update.
func (s *UserStore) Save(ctx context.Context, record *lockgate.UserRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding user record %q: %w", record.Name, err)
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.userKey(record.Name),
			"data", data,
			"version", strconv.FormatUint(record.Version, 10),
		)
		if record.Email != "" {
			pipe.Set(ctx, s.emailKey(record.Email), record.Name, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Delete removes a record and its email index.
func (s *UserStore) Delete(ctx context.Context, record *lockgate.UserRecord) error {
	keys := []string{s.userKey(record.Name)}
	if record.Email != "" {
		keys = append(keys, s.emailKey(record.Email))
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
