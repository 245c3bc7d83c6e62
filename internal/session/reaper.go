package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/remote-tui/termhost/internal/term"
)

const (
	// DefaultIdleTimeout is how long a session may go without input
	// before it is evicted.
	DefaultIdleTimeout = 300 * time.Second

	// DefaultSweepInterval is the reaper's polling cadence. Eviction
	// latency is therefore the timeout plus at most one interval.
	DefaultSweepInterval = time.Second
)

// Reaper is the background loop that evicts idle sessions. Each sweep is
// two-phase: victims are collected under the registry guard, then the
// guard is released before any transport I/O happens.
type Reaper struct {
	registry *Registry
	interval time.Duration
	timeout  time.Duration
	log      zerolog.Logger

	// Evicted, when set, observes each evicted session after removal.
	Evicted func(*Session)
}

// NewReaper creates a reaper sweeping the registry every interval and
// evicting sessions idle longer than timeout.
func NewReaper(registry *Registry, interval, timeout time.Duration, log zerolog.Logger) *Reaper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if timeout <= 0 {
		timeout = DefaultIdleTimeout
	}
	return &Reaper{
		registry: registry,
		interval: interval,
		timeout:  timeout,
		log:      log.With().Str("component", "reaper").Logger(),
	}
}

// Run sweeps until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(time.Now())
		}
	}
}

// Sweep performs one eviction pass. For every idle session: send the
// terminal reset sequence, close the transport channel, then remove the
// entry. Removal may race with a disconnect or fatal-error teardown of
// the same session; whichever path pops the entry from the registry
// performs the resource release.
func (r *Reaper) Sweep(now time.Time) {
	victims := r.registry.IdleBefore(now.Add(-r.timeout))

	for _, v := range victims {
		v.Outbound.Send(term.ResetSequence)
		v.Outbound.Close()

		s := r.registry.Remove(v.ID)
		if s == nil {
			continue
		}
		s.Release()
		r.log.Info().
			Uint64("session", s.ID).
			Str("remote", s.RemoteAddr).
			Dur("idle", now.Sub(s.LastActivity)).
			Msg("session evicted after idle timeout")
		if r.Evicted != nil {
			r.Evicted(s)
		}
	}
}
