// Package session holds the registry of live sessions and the two
// background loops that sweep it: the render scheduler and the idle
// reaper.
package session

import (
	"time"

	"github.com/remote-tui/termhost/internal/app"
	"github.com/remote-tui/termhost/internal/buffer"
	"github.com/remote-tui/termhost/internal/recorder"
	"github.com/remote-tui/termhost/internal/term"
)

// Termination reasons recorded when a session ends.
const (
	ReasonIdleTimeout = "idle-timeout"
	ReasonAppError    = "app-error"
	ReasonDisconnect  = "disconnect"
	ReasonShutdown    = "shutdown"
)

// Session is the per-connection state: one hosted application instance,
// its render surface, and the outbound handle used for teardown. All
// mutable fields are read and written only under the registry guard; the
// outbound forwarder is internally synchronized and may be used after
// the session has been removed.
type Session struct {
	ID         uint64
	RemoteAddr string
	CreatedAt  time.Time

	// LastActivity is stamped on every translated input event and read
	// by the idle reaper.
	LastActivity time.Time

	Surface  *term.Surface
	App      app.App
	Outbound *term.Forwarder

	// Screen retains the most recently rendered output so the ops API
	// can expose a snapshot of a live session.
	Screen *buffer.RingBuffer

	// Recorder is nil unless session recording is enabled.
	Recorder *recorder.Recorder
}

// Release closes resources owned exclusively by the session. It must be
// called exactly once, after the session has been removed from the
// registry; the registry's Remove returning the entry at most once
// enforces that.
func (s *Session) Release() {
	if s.Recorder != nil {
		s.Recorder.Close()
	}
}
