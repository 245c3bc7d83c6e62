// Package model holds the shared data types and sentinel errors.
package model

import "time"

// Record is the audit-trail row kept for every session: when it ran,
// where it came from, and why it ended. It is not session state; live
// sessions exist only in the registry and do not survive a restart.
type Record struct {
	SessionID  uint64     `json:"sessionId"`
	RemoteAddr string     `json:"remoteAddr"`
	StartedAt  time.Time  `json:"startedAt"`
	EndedAt    *time.Time `json:"endedAt,omitempty"`
	EndReason  string     `json:"endReason,omitempty"`
	CastPath   string     `json:"castPath,omitempty"`
}

// Duration returns how long the session ran, up to now for live
// sessions.
func (r *Record) Duration() time.Duration {
	if r.EndedAt != nil {
		return r.EndedAt.Sub(r.StartedAt)
	}
	return time.Since(r.StartedAt)
}
