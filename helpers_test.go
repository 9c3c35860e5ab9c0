package lockgate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

var testStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

var errBoom = errors.New("boom")

// memStore is an in-memory UserStore with the same version semantics as the
// Redis-backed one. conflictNext forces the next Update calls to report a
// version conflict while still applying a competing write, which is how the
// retry path gets exercised.
type memStore struct {
	mu      sync.Mutex
	records map[string]*UserRecord

	conflictNext int
	failFind     error
	failUpdate   error

	updates int
	finds   int
}

func newMemStore(records ...*UserRecord) *memStore {
	s := &memStore{records: make(map[string]*UserRecord)}
	for _, rec := range records {
		s.records[rec.Name] = rec.Clone()
	}
	return s
}

func (s *memStore) Find(ctx context.Context, field LookupField, value string) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finds++

	if s.failFind != nil {
		return nil, s.failFind
	}

	if field == FieldEmail {
		for _, rec := range s.records {
			if rec.Email == value {
				return rec.Clone(), nil
			}
		}
		return nil, ErrUserNotFound
	}

	rec, ok := s.records[value]
	if !ok {
		return nil, ErrUserNotFound
	}
	return rec.Clone(), nil
}

func (s *memStore) Update(ctx context.Context, record *UserRecord) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++

	if s.failUpdate != nil {
		return nil, s.failUpdate
	}

	stored, ok := s.records[record.Name]
	if !ok {
		return nil, ErrUserNotFound
	}

	if s.conflictNext > 0 {
		s.conflictNext--
		// Simulate the competing writer that caused the conflict.
		stored.Version++
		return nil, ErrVersionConflict
	}

	if record.Version != stored.Version {
		return nil, ErrVersionConflict
	}

	next := record.Clone()
	next.Version = record.Version + 1
	s.records[next.Name] = next.Clone()
	return next, nil
}

func (s *memStore) get(name string) *UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[name].Clone()
}

// fakeHasher derives a transparent digest so tests can seed matching records
// without real key stretching.
type fakeHasher struct {
	err   error
	calls int
}

func fakeDigest(secret, salt string) string {
	return fmt.Sprintf("digest(%s|%s)", secret, salt)
}

func (h *fakeHasher) Hash(ctx context.Context, secret, salt string, iterations int) (string, error) {
	h.calls++
	if h.err != nil {
		return "", h.err
	}
	return fakeDigest(secret, salt), nil
}

// fakeCodec accepts exactly the tokens it generated, unless expired is set.
type fakeCodec struct {
	generateErr error
	expired     bool
}

func (c *fakeCodec) Generate(salt string, window time.Duration) (string, error) {
	if c.generateErr != nil {
		return "", c.generateErr
	}
	return "code-" + salt, nil
}

func (c *fakeCodec) Verify(token, salt string, window time.Duration) bool {
	if c.expired {
		return false
	}
	return token == "code-"+salt
}

type sentMail struct {
	name  string
	email string
	token string
}

type fakeMailer struct {
	mu   sync.Mutex
	err  error
	sent []sentMail
}

func (m *fakeMailer) SendTwoFactorCode(ctx context.Context, recipientName, recipientEmail, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{name: recipientName, email: recipientEmail, token: token})
	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *fakeMailer) lastSent() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}
	}
	return m.sent[len(m.sent)-1]
}

type fakeSessions struct {
	mu        sync.Mutex
	err       error
	destroyed []string
}

func (s *fakeSessions) Destroy(ctx context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.destroyed = append(s.destroyed, handle)
	return nil
}

func (s *fakeSessions) destroyedHandles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.destroyed...)
}

// testRig bundles an engine with its fakes and a settable clock.
type testRig struct {
	engine   *Engine
	store    *memStore
	hasher   *fakeHasher
	codec    *fakeCodec
	mailer   *fakeMailer
	sessions *fakeSessions
	now      time.Time
}

func (r *testRig) advance(d time.Duration) {
	r.now = r.now.Add(d)
}

func newTestRig(t *testing.T, records ...*UserRecord) *testRig {
	t.Helper()

	rig := &testRig{
		store:    newMemStore(records...),
		hasher:   &fakeHasher{},
		codec:    &fakeCodec{},
		mailer:   &fakeMailer{},
		sessions: &fakeSessions{},
		now:      testStart,
	}

	engine, err := NewBuilder().
		WithUserStore(rig.store).
		WithHasher(rig.hasher).
		WithTokenCodec(rig.codec).
		WithMailer(rig.mailer).
		WithSessionStore(rig.sessions).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	engine.clock = func() time.Time { return rig.now }
	rig.engine = engine
	t.Cleanup(engine.Close)

	return rig
}

func testUser() *UserRecord {
	return &UserRecord{
		Name:    "john",
		Email:   "john@example.com",
		Salt:    "salt-john",
		Digest:  fakeDigest("secret", "salt-john"),
		Version: 7,
	}
}

func mustRejected(t *testing.T, out *Outcome, reason RejectReason) {
	t.Helper()
	if out == nil {
		t.Fatalf("outcome is nil")
	}
	if out.Status != OutcomeRejected {
		t.Fatalf("status = %d, want rejected", out.Status)
	}
	if out.Reason != reason {
		t.Fatalf("reason = %d, want %d", out.Reason, reason)
	}
}

func mustContain(t *testing.T, s, sub string) {
	t.Helper()
	if !strings.Contains(s, sub) {
		t.Fatalf("%q does not contain %q", s, sub)
	}
}

func mustErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}
