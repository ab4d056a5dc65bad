package domain

import "time"

// FeedbackStage tracks progress through the rating→comment→publish workflow.
type FeedbackStage string

const (
	StageAwaitingRating  FeedbackStage = "AWAITING_RATING"
	StageAwaitingComment FeedbackStage = "AWAITING_COMMENT"
)

// FeedbackSession is the transient per-requester workflow state. It lives in
// process memory only: a restart between ticket closure and review
// publication drops it, which is accepted data loss.
type FeedbackSession struct {
	RequesterID       string
	RequesterName     string
	TicketDescription string
	ResolvedBy        string
	Rating            int
	Stage             FeedbackStage
	StartedAt         time.Time
}
