package lockgate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestEngineEmitsAuditEvents(t *testing.T) {
	sink := NewChannelSink(16)

	engine, err := NewBuilder().
		WithUserStore(newMemStore(testUser())).
		WithHasher(&fakeHasher{}).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	ctx := WithClientIP(context.Background(), "10.0.0.5")
	if _, err := engine.Login(ctx, "john", "wrong"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := engine.Login(ctx, "john", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	engine.Close()

	// Close drained the dispatcher, so everything is already buffered in the
	// sink channel.
	var events []AuditEvent
	for len(sink.Events()) > 0 {
		events = append(events, <-sink.Events())
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	mismatch, success := events[0], events[1]
	if mismatch.EventType != "login" || mismatch.Success {
		t.Fatalf("first event = %+v", mismatch)
	}
	if mismatch.Metadata["reason"] != "password_mismatch" {
		t.Fatalf("first event metadata = %v", mismatch.Metadata)
	}
	if success.EventType != "login" || !success.Success {
		t.Fatalf("second event = %+v", success)
	}
	for _, event := range events {
		if event.User != "john" || event.IP != "10.0.0.5" || event.EventID == "" {
			t.Fatalf("event incomplete: %+v", event)
		}
	}
}

func TestAuditDispatcherDropsWhenFull(t *testing.T) {
	blocked := make(chan struct{})
	sink := blockingSink{release: blocked}

	cfg := AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}
	d := newAuditDispatcher(cfg, sink)

	// One event occupies the worker, one fills the buffer; everything after
	// that is dropped.
	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: "login"})
	}
	close(blocked)
	d.Close()

	if dropped := d.Dropped(); dropped == 0 {
		t.Fatalf("no events dropped")
	}
}

type blockingSink struct {
	release chan struct{}
}

func (s blockingSink) Emit(ctx context.Context, event AuditEvent) {
	<-s.release
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{EventType: "login", User: "john", Success: true})
	sink.Emit(context.Background(), AuditEvent{EventType: "logout", User: "john", Success: true})

	scanner := bufio.NewScanner(&buf)
	var lines int
	for scanner.Scan() {
		lines++
		var event AuditEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			t.Fatalf("line %d: %v", lines, err)
		}
		if event.User != "john" {
			t.Fatalf("line %d user = %q", lines, event.User)
		}
	}
	if lines != 2 {
		t.Fatalf("got %d lines, want 2", lines)
	}
}

func TestNoOpSink(t *testing.T) {
	NoOpSink{}.Emit(context.Background(), AuditEvent{EventType: "login"})
}
