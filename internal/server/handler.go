// Package server implements the per-connection session lifecycle:
// open, resize, input data, and close events delivered by the transport.
package server

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/remote-tui/termhost/internal/app"
	"github.com/remote-tui/termhost/internal/buffer"
	"github.com/remote-tui/termhost/internal/input"
	"github.com/remote-tui/termhost/internal/model"
	"github.com/remote-tui/termhost/internal/recorder"
	"github.com/remote-tui/termhost/internal/repository"
	"github.com/remote-tui/termhost/internal/session"
	"github.com/remote-tui/termhost/internal/term"
)

// screenSnapshotBytes bounds the per-session screen snapshot buffer.
const screenSnapshotBytes = 16 * 1024

// castWidth and castHeight are the dimensions recorded in cast headers.
// The client's real size arrives only after the first pty request.
const (
	castWidth  = 80
	castHeight = 24
)

// Config holds optional collaborators for the lifecycle handler.
type Config struct {
	// RecordDir enables per-session asciinema recording when non-empty.
	RecordDir string

	// History, when set, receives one audit record per session.
	History *repository.HistoryRepository
}

// Handler dispatches connection-scoped events into the session
// registry. One handler serves every connection; the transport invokes
// it from one goroutine per connection.
type Handler struct {
	registry *session.Registry
	newApp   app.Factory
	cfg      Config
	log      zerolog.Logger
}

// NewHandler creates a lifecycle handler.
func NewHandler(registry *session.Registry, newApp app.Factory, cfg Config, log zerolog.Logger) *Handler {
	return &Handler{
		registry: registry,
		newApp:   newApp,
		cfg:      cfg,
		log:      log.With().Str("component", "lifecycle").Logger(),
	}
}

// Open creates and registers a session for a newly opened channel and
// returns its id. The channel is owned by the session's outbound
// forwarder from this point on.
func (h *Handler) Open(channel io.WriteCloser, remoteAddr string) (uint64, error) {
	id := h.registry.NextID()
	slog := h.log.With().Uint64("session", id).Logger()

	fwd := term.NewForwarder(channel, slog)
	screen := buffer.NewRingBuffer(screenSnapshotBytes)
	sink := io.Writer(io.MultiWriter(fwd, screen))

	var rec *recorder.Recorder
	var castPath string
	if h.cfg.RecordDir != "" {
		castPath = filepath.Join(h.cfg.RecordDir, fmt.Sprintf("session-%d.cast", id))
		r, err := recorder.New(castPath, castWidth, castHeight)
		if err != nil {
			slog.Warn().Err(err).Msg("session recording disabled")
			castPath = ""
		} else {
			rec = r
			sink = io.MultiWriter(fwd, screen, rec)
		}
	}

	now := time.Now()
	s := &session.Session{
		ID:           id,
		RemoteAddr:   remoteAddr,
		CreatedAt:    now,
		LastActivity: now,
		Surface:      term.NewSurface(sink),
		App:          h.newApp(),
		Outbound:     fwd,
		Screen:       screen,
		Recorder:     rec,
	}

	if err := h.registry.Register(s); err != nil {
		fwd.Close()
		s.Release()
		return 0, fmt.Errorf("failed to register session %d: %w", id, err)
	}

	if h.cfg.History != nil {
		err := h.cfg.History.Create(context.Background(), &model.Record{
			SessionID:  id,
			RemoteAddr: remoteAddr,
			StartedAt:  now,
			CastPath:   castPath,
		})
		if err != nil {
			slog.Warn().Err(err).Msg("failed to record session start")
		}
	}

	slog.Info().Str("remote", remoteAddr).Msg("session opened")
	return id, nil
}

// Resize updates the session's render surface dimensions. The new size
// takes effect before the next render tick.
func (h *Handler) Resize(id uint64, width, height int) {
	h.registry.WithSession(id, func(s *session.Session) {
		s.Surface.Resize(width, height)
	})
}

// Data translates one inbound read. A decoded key stamps the session's
// activity and is dispatched to the application; a fatal application
// error terminates the session synchronously, without waiting for the
// reaper. Unrecognized bytes are dropped.
func (h *Handler) Data(id uint64, data []byte) {
	key, ok := input.Translate(data)
	if !ok {
		return
	}

	var fatal bool
	var fwd *term.Forwarder
	found := h.registry.WithSession(id, func(s *session.Session) {
		s.LastActivity = time.Now()
		if err := s.App.HandleKey(key); err != nil {
			fatal = true
			fwd = s.Outbound
			h.log.Info().Uint64("session", id).Err(err).Msg("application terminated session")
		}
	})
	if !found || !fatal {
		return
	}

	h.terminate(id, fwd, session.ReasonAppError)
}

// Close handles an explicit disconnect. Idempotent against the reaper
// and the fatal-error path.
func (h *Handler) Close(id uint64) {
	var fwd *term.Forwarder
	if !h.registry.WithSession(id, func(s *session.Session) { fwd = s.Outbound }) {
		return
	}
	h.terminate(id, fwd, session.ReasonDisconnect)
}

// Shutdown tears down every live session at process exit.
func (h *Handler) Shutdown() {
	for _, s := range h.registry.Drain() {
		s.Outbound.Send(term.ResetSequence)
		s.Outbound.Close()
		s.Release()
		h.finishRecord(s.ID, session.ReasonShutdown)
	}
}

// terminate runs the shared teardown path: reset sequence, channel
// close, registry removal. Only the caller that actually pops the entry
// releases resources and finishes the audit record.
func (h *Handler) terminate(id uint64, fwd *term.Forwarder, reason string) {
	fwd.Send(term.ResetSequence)
	fwd.Close()

	s := h.registry.Remove(id)
	if s == nil {
		return
	}
	s.Release()
	h.finishRecord(id, reason)
	h.log.Info().Uint64("session", id).Str("reason", reason).Msg("session closed")
}

func (h *Handler) finishRecord(id uint64, reason string) {
	if h.cfg.History == nil {
		return
	}
	if err := h.cfg.History.Finish(context.Background(), id, time.Now(), reason); err != nil {
		h.log.Warn().Err(err).Uint64("session", id).Msg("failed to record session end")
	}
}
