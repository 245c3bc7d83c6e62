package monitor

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/remote-tui/termhost/internal/session"
	"github.com/remote-tui/termhost/internal/term"
)

func TestBroadcaster_Publish(t *testing.T) {
	registry := session.NewRegistry()
	now := time.Now()
	s := &session.Session{
		ID:           registry.NextID(),
		RemoteAddr:   "203.0.113.7:50022",
		CreatedAt:    now,
		LastActivity: now,
		Surface:      term.NewSurface(io.Discard),
	}
	if err := registry.Register(s); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	hub := NewHub()
	viewer := NewClient(nil)
	hub.Register(viewer)

	b := NewBroadcaster(hub, registry, time.Second, zerolog.Nop())
	b.Publish(now)

	msgs := drain(viewer)
	if len(msgs) != 1 {
		t.Fatalf("viewer received %d snapshots, want 1", len(msgs))
	}

	var snap Snapshot
	if err := json.Unmarshal(msgs[0], &snap); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if snap.Count != 1 || len(snap.Sessions) != 1 {
		t.Fatalf("snapshot holds %d sessions, want 1", snap.Count)
	}
	if snap.Sessions[0].ID != s.ID {
		t.Errorf("snapshot session id = %d, want %d", snap.Sessions[0].ID, s.ID)
	}
}

func TestBroadcaster_SkipsWithoutViewers(t *testing.T) {
	registry := session.NewRegistry()
	hub := NewHub()

	b := NewBroadcaster(hub, registry, time.Second, zerolog.Nop())
	b.Publish(time.Now()) // must not panic with an empty hub
}
