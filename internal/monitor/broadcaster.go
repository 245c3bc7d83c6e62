package monitor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/remote-tui/termhost/internal/session"
)

// Snapshot is one monitor frame: the set of live sessions at an
// instant.
type Snapshot struct {
	At       time.Time      `json:"at"`
	Count    int            `json:"count"`
	Sessions []session.Info `json:"sessions"`
}

// Broadcaster periodically pushes registry snapshots to every monitor
// client.
type Broadcaster struct {
	hub      *Hub
	registry *session.Registry
	interval time.Duration
	log      zerolog.Logger
}

// NewBroadcaster creates a broadcaster snapshotting the registry every
// interval.
func NewBroadcaster(hub *Hub, registry *session.Registry, interval time.Duration, log zerolog.Logger) *Broadcaster {
	if interval <= 0 {
		interval = time.Second
	}
	return &Broadcaster{
		hub:      hub,
		registry: registry,
		interval: interval,
		log:      log.With().Str("component", "monitor").Logger(),
	}
}

// Run broadcasts until ctx is cancelled. Snapshots are skipped while no
// client is connected.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Publish(time.Now())
		}
	}
}

// Publish pushes one registry snapshot to every connected client. It is
// a no-op while no client is connected.
func (b *Broadcaster) Publish(at time.Time) {
	if b.hub.ClientCount() == 0 {
		return
	}
	infos := b.registry.Infos()
	data, err := json.Marshal(Snapshot{
		At:       at,
		Count:    len(infos),
		Sessions: infos,
	})
	if err != nil {
		b.log.Warn().Err(err).Msg("failed to marshal snapshot")
		return
	}
	b.hub.Broadcast(data)
}
