package session

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/remote-tui/termhost/internal/app"
	"github.com/remote-tui/termhost/internal/input"
	"github.com/remote-tui/termhost/internal/model"
	"github.com/remote-tui/termhost/internal/term"
)

// stubApp counts scheduler callbacks and can fail on input.
type stubApp struct {
	ticks   []uint64
	draws   int
	keys    []input.Key
	keyErr  error
	content string
}

func (a *stubApp) HandleTick(tick uint64) {
	a.ticks = append(a.ticks, tick)
}

func (a *stubApp) Draw(f *term.Frame) {
	a.draws++
	if a.content != "" {
		f.SetContent(a.content)
	}
}

func (a *stubApp) HandleKey(key input.Key) error {
	a.keys = append(a.keys, key)
	return a.keyErr
}

var _ app.App = (*stubApp)(nil)

func newTestSession(registry *Registry, lastActivity time.Time) (*Session, *stubApp) {
	a := &stubApp{}
	s := &Session{
		ID:           registry.NextID(),
		RemoteAddr:   "203.0.113.7:50022",
		CreatedAt:    lastActivity,
		LastActivity: lastActivity,
		Surface:      term.NewSurface(io.Discard),
		App:          a,
	}
	return s, a
}

func TestRegistry_NextID(t *testing.T) {
	registry := NewRegistry()

	seen := make(map[uint64]bool)
	prev := uint64(0)
	for i := 0; i < 100; i++ {
		id := registry.NextID()
		if id <= prev {
			t.Fatalf("id %d is not greater than previous %d", id, prev)
		}
		if seen[id] {
			t.Fatalf("id %d issued twice", id)
		}
		seen[id] = true
		prev = id
	}
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()
	s, _ := newTestSession(registry, time.Now())

	if err := registry.Register(s); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if registry.Len() != 1 {
		t.Errorf("Len() = %d, want 1", registry.Len())
	}

	if err := registry.Register(s); !errors.Is(err, model.ErrDuplicateSession) {
		t.Errorf("duplicate Register() error = %v, want ErrDuplicateSession", err)
	}
}

func TestRegistry_WithSession(t *testing.T) {
	registry := NewRegistry()
	s, _ := newTestSession(registry, time.Now())
	if err := registry.Register(s); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	stamp := time.Now().Add(time.Hour)
	if !registry.WithSession(s.ID, func(s *Session) { s.LastActivity = stamp }) {
		t.Fatal("WithSession() reported the session absent")
	}
	if !s.LastActivity.Equal(stamp) {
		t.Error("mutation inside WithSession was lost")
	}

	if registry.WithSession(s.ID+1, func(*Session) {}) {
		t.Error("WithSession() reported an unknown id present")
	}
}

func TestRegistry_RemoveIsExactlyOnce(t *testing.T) {
	registry := NewRegistry()
	s, _ := newTestSession(registry, time.Now())
	if err := registry.Register(s); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if got := registry.Remove(s.ID); got != s {
		t.Fatalf("Remove() = %v, want the registered session", got)
	}
	if got := registry.Remove(s.ID); got != nil {
		t.Errorf("second Remove() = %v, want nil", got)
	}
	if registry.Len() != 0 {
		t.Errorf("Len() = %d after removal, want 0", registry.Len())
	}
}

func TestRegistry_IdleBefore(t *testing.T) {
	registry := NewRegistry()
	now := time.Now()

	fresh, _ := newTestSession(registry, now)
	stale, _ := newTestSession(registry, now.Add(-10*time.Minute))
	for _, s := range []*Session{fresh, stale} {
		if err := registry.Register(s); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}

	victims := registry.IdleBefore(now.Add(-5 * time.Minute))
	if len(victims) != 1 {
		t.Fatalf("IdleBefore() returned %d victims, want 1", len(victims))
	}
	if victims[0].ID != stale.ID {
		t.Errorf("victim id = %d, want %d", victims[0].ID, stale.ID)
	}
	if registry.Len() != 2 {
		t.Errorf("IdleBefore() must not remove sessions, Len() = %d", registry.Len())
	}
}

func TestRegistry_Drain(t *testing.T) {
	registry := NewRegistry()
	for i := 0; i < 3; i++ {
		s, _ := newTestSession(registry, time.Now())
		if err := registry.Register(s); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}

	drained := registry.Drain()
	if len(drained) != 3 {
		t.Errorf("Drain() returned %d sessions, want 3", len(drained))
	}
	if registry.Len() != 0 {
		t.Errorf("Len() = %d after drain, want 0", registry.Len())
	}
}

func TestRegistry_Infos(t *testing.T) {
	registry := NewRegistry()
	var want []uint64
	for i := 0; i < 5; i++ {
		s, _ := newTestSession(registry, time.Now())
		s.Surface.Resize(80, 24)
		if err := registry.Register(s); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		want = append(want, s.ID)
	}

	infos := registry.Infos()
	if len(infos) != len(want) {
		t.Fatalf("Infos() returned %d entries, want %d", len(infos), len(want))
	}
	for i, info := range infos {
		if info.ID != want[i] {
			t.Errorf("Infos()[%d].ID = %d, want %d (ordered by id)", i, info.ID, want[i])
		}
		if info.Width != 80 || info.Height != 24 {
			t.Errorf("Infos()[%d] size = %dx%d, want 80x24", i, info.Width, info.Height)
		}
	}
}
