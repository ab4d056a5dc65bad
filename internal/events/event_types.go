package events

import (
	"time"

	"github.com/hoodmarket/ticket-bot/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketClosed    EventType = "ticket_closed"
	EventReviewPublished EventType = "review_published"
	EventTicketsReset    EventType = "tickets_reset"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Number      int64           `json:"number"`
	RequesterID string          `json:"requester_id"`
	Category    domain.Category `json:"category"`
	ChannelRef  string          `json:"channel_ref"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	Number      int64  `json:"number"`
	RequesterID string `json:"requester_id"`
	ChannelRef  string `json:"channel_ref"`
	ClosedBy    string `json:"closed_by"`
}

// ReviewPublishedPayload payload.
type ReviewPublishedPayload struct {
	ReviewerID string `json:"reviewer_id"`
	Rating     int    `json:"rating"`
	Published  bool   `json:"published"`
}

// TicketsResetPayload payload.
type TicketsResetPayload struct {
	RequestersCleared int `json:"requesters_cleared"`
}
