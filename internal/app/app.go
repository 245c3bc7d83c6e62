// Package app defines the hosted interactive application contract and
// ships the built-in dashboard application.
package app

import (
	"errors"

	"github.com/remote-tui/termhost/internal/input"
	"github.com/remote-tui/termhost/internal/term"
)

// ErrQuit is returned by HandleKey when the application wants its
// session terminated. The lifecycle handler treats any HandleKey error
// as fatal for that session only.
var ErrQuit = errors.New("application requested quit")

// App is one hosted application instance. Every live session owns
// exactly one. Calls are serialized by the session registry guard, so
// implementations need no internal locking.
type App interface {
	// HandleTick advances the application clock. The counter is shared
	// across sessions and wraps silently at the uint64 boundary.
	HandleTick(tick uint64)

	// Draw paints the current state into the frame.
	Draw(f *term.Frame)

	// HandleKey dispatches one decoded key event. A non-nil error
	// terminates the session.
	HandleKey(k input.Key) error
}

// Factory creates a fresh application instance for a new session.
type Factory func() App
