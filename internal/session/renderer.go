package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultFrameInterval is the render cadence: 30 frames per second.
const DefaultFrameInterval = 33 * time.Millisecond

// Renderer is the background loop that redraws every live session on a
// fixed cadence. One renderer serves the whole registry.
type Renderer struct {
	registry *Registry
	interval time.Duration
	log      zerolog.Logger

	tick uint64
}

// NewRenderer creates a renderer sweeping the registry every interval.
func NewRenderer(registry *Registry, interval time.Duration, log zerolog.Logger) *Renderer {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Renderer{
		registry: registry,
		interval: interval,
		log:      log.With().Str("component", "renderer").Logger(),
	}
}

// Run ticks until ctx is cancelled.
func (r *Renderer) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Tick()
		}
	}
}

// Tick performs one render pass: under the registry guard, advance every
// session's application clock and redraw it. A failed render is logged
// and the session is retried on the next pass; one misbehaving session
// never stalls the others. The tick counter wraps silently past the
// uint64 maximum.
func (r *Renderer) Tick() {
	tick := r.tick
	r.registry.Each(func(s *Session) {
		s.App.HandleTick(tick)
		if err := s.Surface.Render(s.App.Draw); err != nil {
			r.log.Debug().Err(err).Uint64("session", s.ID).Msg("render failed")
		}
	})
	r.tick++
}

// TickCount returns the current tick counter.
func (r *Renderer) TickCount() uint64 {
	return r.tick
}
