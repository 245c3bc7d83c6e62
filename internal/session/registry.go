package session

import (
	"sort"
	"sync"
	"time"

	"github.com/remote-tui/termhost/internal/model"
	"github.com/remote-tui/termhost/internal/term"
)

// Registry is the sole authoritative store of live sessions: a single
// mutex guarding the whole map plus the id counter. The guard is coarse
// on purpose: it is held only for in-memory mutation, never across
// transport I/O, so contention stays low at the session counts this
// server targets.
type Registry struct {
	mu       sync.Mutex
	nextID   uint64
	sessions map[uint64]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[uint64]*Session),
	}
}

// NextID returns the next session identifier. Identifiers are strictly
// increasing for the lifetime of the process and never reused.
func (r *Registry) NextID() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	return r.nextID
}

// Register inserts a new session. It fails if the id is already present,
// which cannot happen when ids come from NextID.
func (r *Registry) Register(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[s.ID]; exists {
		return model.ErrDuplicateSession
	}
	r.sessions[s.ID] = s
	return nil
}

// WithSession runs fn with exclusive access to the session's mutable
// fields. It reports whether the session was present. fn must not block
// on I/O.
func (r *Registry) WithSession(id uint64, fn func(*Session)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.sessions[id]
	if !exists {
		return false
	}
	fn(s)
	return true
}

// Remove erases the session and returns it so the caller can release
// owned resources. Removing an absent id returns nil; at most one caller
// ever receives the session, which is what makes cleanup exactly-once
// across the three termination paths.
func (r *Registry) Remove(id uint64) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.sessions[id]
	if !exists {
		return nil
	}
	delete(r.sessions, id)
	return s
}

// Each runs fn for every live session while holding the guard.
func (r *Registry) Each(fn func(*Session)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		fn(s)
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Victim pairs a session id with its outbound handle, collected under
// the guard so the reaper can perform teardown I/O after releasing it.
type Victim struct {
	ID       uint64
	Outbound *term.Forwarder
}

// IdleBefore collects every session whose last activity is older than
// cutoff. It only reads; removal happens in the reaper's second phase.
func (r *Registry) IdleBefore(cutoff time.Time) []Victim {
	r.mu.Lock()
	defer r.mu.Unlock()

	var victims []Victim
	for id, s := range r.sessions {
		if s.LastActivity.Before(cutoff) {
			victims = append(victims, Victim{ID: id, Outbound: s.Outbound})
		}
	}
	return victims
}

// Drain removes and returns every session. Used at shutdown.
func (r *Registry) Drain() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	drained := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		drained = append(drained, s)
		delete(r.sessions, id)
	}
	return drained
}

// Info is a read-only snapshot of one live session for the ops API and
// the monitor stream.
type Info struct {
	ID           uint64    `json:"id"`
	RemoteAddr   string    `json:"remoteAddr"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
}

// Infos returns a snapshot of every live session, ordered by id.
func (r *Registry) Infos() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]Info, 0, len(r.sessions))
	for _, s := range r.sessions {
		w, h := s.Surface.Size()
		infos = append(infos, Info{
			ID:           s.ID,
			RemoteAddr:   s.RemoteAddr,
			CreatedAt:    s.CreatedAt,
			LastActivity: s.LastActivity,
			Width:        w,
			Height:       h,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}
