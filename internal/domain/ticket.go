package domain

import "time"

// TicketState enumerates lifecycle states for tickets.
type TicketState string

const (
	TicketStateOpen   TicketState = "OPEN"
	TicketStateClosed TicketState = "CLOSED"
)

// Ticket is the aggregate for a support request bound to one requester and
// one provisioned conversation channel. Tickets are never deleted; closure
// mutates them exactly once.
type Ticket struct {
	RequesterID   string      `json:"requester_id"`
	RequesterName string      `json:"requester_name"`
	Number        int64       `json:"number"`
	Category      Category    `json:"category"`
	Description   string      `json:"description"`
	ChannelRef    string      `json:"channel_ref"`
	State         TicketState `json:"state"`
	CreatedAt     time.Time   `json:"created_at"`
	ClosedAt      *time.Time  `json:"closed_at,omitempty"`
	ClosedBy      *string     `json:"closed_by,omitempty"`
}

// IsOpen reports whether the ticket is still active.
func (t Ticket) IsOpen() bool {
	return t.State == TicketStateOpen
}

// Duration returns the open-to-close interval, or zero while open.
func (t Ticket) Duration() time.Duration {
	if t.ClosedAt == nil {
		return 0
	}
	return t.ClosedAt.Sub(t.CreatedAt)
}
