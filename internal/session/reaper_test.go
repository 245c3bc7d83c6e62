package session

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/remote-tui/termhost/internal/term"
)

// recordingChannel captures what the forwarder delivers to the
// transport.
type recordingChannel struct {
	mu     sync.Mutex
	writes [][]byte
	closed bool
}

func (c *recordingChannel) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	buf := make([]byte, len(p))
	copy(buf, p)
	c.writes = append(c.writes, buf)
	return len(p), nil
}

func (c *recordingChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *recordingChannel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *recordingChannel) Written() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	var all []byte
	for _, w := range c.writes {
		all = append(all, w...)
	}
	return all
}

func TestReaper_Sweep(t *testing.T) {
	registry := NewRegistry()
	now := time.Now()

	ch := &recordingChannel{}
	stale, _ := newTestSession(registry, now.Add(-6*time.Minute))
	stale.Outbound = term.NewForwarder(ch, zerolog.Nop())
	if err := registry.Register(stale); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	var evicted []uint64
	r := NewReaper(registry, time.Second, 5*time.Minute, zerolog.Nop())
	r.Evicted = func(s *Session) { evicted = append(evicted, s.ID) }

	r.Sweep(now)

	if !ch.Closed() {
		t.Error("transport channel was not closed")
	}
	if got := ch.Written(); !bytes.Equal(got, term.ResetSequence) {
		t.Errorf("channel received % x, want the reset sequence % x", got, term.ResetSequence)
	}
	if registry.Len() != 0 {
		t.Errorf("Len() = %d after sweep, want 0", registry.Len())
	}
	if len(evicted) != 1 || evicted[0] != stale.ID {
		t.Errorf("Evicted observed %v, want [%d]", evicted, stale.ID)
	}
}

func TestReaper_FreshSessionSurvives(t *testing.T) {
	registry := NewRegistry()
	now := time.Now()

	ch := &recordingChannel{}
	fresh, _ := newTestSession(registry, now.Add(-4*time.Minute))
	fresh.Outbound = term.NewForwarder(ch, zerolog.Nop())
	if err := registry.Register(fresh); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	r := NewReaper(registry, time.Second, 5*time.Minute, zerolog.Nop())
	r.Sweep(now)

	if registry.Len() != 1 {
		t.Errorf("Len() = %d, want the fresh session kept", registry.Len())
	}
	if ch.Closed() {
		t.Error("fresh session's channel was closed")
	}
}

func TestReaper_ActivityResetsTheClock(t *testing.T) {
	registry := NewRegistry()
	now := time.Now()

	ch := &recordingChannel{}
	s, _ := newTestSession(registry, now.Add(-6*time.Minute))
	s.Outbound = term.NewForwarder(ch, zerolog.Nop())
	if err := registry.Register(s); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Input arrives just before the sweep.
	registry.WithSession(s.ID, func(s *Session) { s.LastActivity = now })

	r := NewReaper(registry, time.Second, 5*time.Minute, zerolog.Nop())
	r.Sweep(now)

	if registry.Len() != 1 {
		t.Error("session with recent activity was evicted")
	}
}

func TestReaper_RemovalRace(t *testing.T) {
	registry := NewRegistry()
	now := time.Now()

	ch := &recordingChannel{}
	s, _ := newTestSession(registry, now.Add(-6*time.Minute))
	s.Outbound = term.NewForwarder(ch, zerolog.Nop())
	if err := registry.Register(s); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// A disconnect pops the session between the reaper's collect and act
	// phases.
	victims := registry.IdleBefore(now.Add(-5 * time.Minute))
	if len(victims) != 1 {
		t.Fatalf("collected %d victims, want 1", len(victims))
	}
	registry.Remove(s.ID)

	evictions := 0
	r := NewReaper(registry, time.Second, 5*time.Minute, zerolog.Nop())
	r.Evicted = func(*Session) { evictions++ }
	r.Sweep(now)

	if evictions != 0 {
		t.Errorf("reaper reported %d evictions for an already-removed session", evictions)
	}
}
