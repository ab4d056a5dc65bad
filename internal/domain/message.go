package domain

import "time"

// MessageRecord captures one message of a ticket channel's history as handed
// over by the platform boundary for archival.
type MessageRecord struct {
	Author      string    `json:"author"`
	Timestamp   time.Time `json:"timestamp"`
	Body        string    `json:"body"`
	Attachments []string  `json:"attachments,omitempty"`
}
