package domain

import "time"

// RatingMin and RatingMax bound the closed set of rating options.
const (
	RatingMin = 1
	RatingMax = 5
)

// ValidRating reports whether the rating is one of the five fixed options.
func ValidRating(rating int) bool {
	return rating >= RatingMin && rating <= RatingMax
}

// Review is the published output of a completed feedback session. It is
// delivered to the review destination as a side effect and not retained.
type Review struct {
	ReviewerID        string    `json:"reviewer_id"`
	ReviewerName      string    `json:"reviewer_name"`
	Rating            int       `json:"rating"`
	TicketDescription string    `json:"ticket_description"`
	ResolvedBy        string    `json:"resolved_by"`
	Comment           string    `json:"comment,omitempty"`
	PublishedAt       time.Time `json:"published_at"`
}
