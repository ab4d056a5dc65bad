// Package store persists the bot's state as a single typed snapshot
// document. A Save replaces the whole document atomically: either the new
// snapshot is durable or the previous one remains intact. Callers are
// responsible for serializing their load-mutate-save cycles; the backends
// make no attempt to merge concurrent writers.
package store

import (
	"context"
	"encoding/json"

	"github.com/hoodmarket/ticket-bot/internal/domain"
)

// Snapshot is the persisted document. The typed fields replace the original
// free-form dot-path key space: tickets and the shared counter are explicit,
// and the open-ended settings namespace is carried along untouched.
type Snapshot struct {
	Tickets  map[string][]domain.Ticket `json:"tickets"`
	Counter  int64                      `json:"counter"`
	Settings map[string]json.RawMessage `json:"settings,omitempty"`
}

// NewSnapshot returns an empty, initialized snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Tickets: make(map[string][]domain.Ticket),
	}
}

// Clone returns a deep copy so callers can mutate without aliasing the
// backend's cached state.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Tickets: make(map[string][]domain.Ticket, len(s.Tickets)),
		Counter: s.Counter,
	}
	for requester, seq := range s.Tickets {
		copied := make([]domain.Ticket, len(seq))
		copy(copied, seq)
		out.Tickets[requester] = copied
	}
	if s.Settings != nil {
		out.Settings = make(map[string]json.RawMessage, len(s.Settings))
		for k, v := range s.Settings {
			out.Settings[k] = v
		}
	}
	return out
}

// normalize ensures maps are non-nil after decoding.
func (s *Snapshot) normalize() {
	if s.Tickets == nil {
		s.Tickets = make(map[string][]domain.Ticket)
	}
}

// Store abstracts durable snapshot persistence.
type Store interface {
	// Load returns the current snapshot, or an empty one when nothing has
	// been persisted yet.
	Load(ctx context.Context) (*Snapshot, error)
	// Save atomically replaces the persisted snapshot.
	Save(ctx context.Context, snapshot *Snapshot) error
}
