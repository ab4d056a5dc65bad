package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hoodmarket/ticket-bot/internal/domain"
	"github.com/hoodmarket/ticket-bot/internal/events"
	"github.com/hoodmarket/ticket-bot/internal/platform"
	apperrors "github.com/hoodmarket/ticket-bot/pkg/util"
)

// FeedbackMessenger is the platform subset the feedback workflow needs.
type FeedbackMessenger interface {
	SendDirectMessage(ctx context.Context, userID string, msg platform.Message) error
	SendChannelMessage(ctx context.Context, channelRef string, msg platform.Message) error
}

// FeedbackService drives the per-requester rating→comment→publish state
// machine. Sessions are process-local; at most one exists per requester and
// starting a new one silently replaces a stale one.
type FeedbackService struct {
	messenger     FeedbackMessenger
	reviewChannel string
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	now           func() time.Time

	mu       sync.Mutex
	sessions map[string]*domain.FeedbackSession
}

// NewFeedbackService constructs the service.
func NewFeedbackService(messenger FeedbackMessenger, reviewChannel string, dispatcher events.Dispatcher, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{
		messenger:     messenger,
		reviewChannel: reviewChannel,
		dispatcher:    dispatcher,
		logger:        logger,
		now:           time.Now,
		sessions:      make(map[string]*domain.FeedbackSession),
	}
}

// StartSession creates (or overwrites) the requester's session in
// AWAITING_RATING and sends the rating prompt. A delivery failure is
// returned for logging but the session stays: the workflow stalls rather
// than fails.
func (s *FeedbackService) StartSession(ctx context.Context, requesterID, requesterName, ticketDescription, resolvedBy string) error {
	if resolvedBy == "" {
		resolvedBy = "our support team"
	}

	s.mu.Lock()
	s.sessions[requesterID] = &domain.FeedbackSession{
		RequesterID:       requesterID,
		RequesterName:     requesterName,
		TicketDescription: ticketDescription,
		ResolvedBy:        resolvedBy,
		Stage:             domain.StageAwaitingRating,
		StartedAt:         s.now(),
	}
	s.mu.Unlock()

	prompt := platform.Message{
		Notice: platform.Notice{
			Title: "How was your experience?",
			Body: fmt.Sprintf("Thank you for using our service for **%s**.\n\nYour feedback helps us keep our quality up.",
				ticketDescription),
			Fields: []platform.NoticeField{
				{Name: "Service", Value: ticketDescription, Inline: true},
				{Name: "Completed by", Value: resolvedBy, Inline: true},
			},
			Color: platform.ColorAccent,
		},
		Widget: platform.WidgetRatingSelect,
	}
	if err := s.messenger.SendDirectMessage(ctx, requesterID, prompt); err != nil {
		return fmt.Errorf("deliver rating prompt: %w", err)
	}
	return nil
}

// RecordRating attaches the rating to the session and advances it to
// AWAITING_COMMENT. Valid only in AWAITING_RATING with a rating from the
// fixed five-option set.
func (s *FeedbackService) RecordRating(ctx context.Context, requesterID string, rating int) error {
	if !domain.ValidRating(rating) {
		return apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": rating})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[requesterID]
	if !ok {
		return apperrors.NewNotFound("feedback session", map[string]any{"requester_id": requesterID})
	}
	if session.Stage != domain.StageAwaitingRating {
		return apperrors.NewValidationError("rating already recorded", nil)
	}
	session.Rating = rating
	session.Stage = domain.StageAwaitingComment
	return nil
}

// Finalize publishes the review built from the session plus the optional
// comment, then discards the session whether or not publication succeeded —
// the rating prompt is one-shot. Returns whether the review was published.
func (s *FeedbackService) Finalize(ctx context.Context, requesterID, comment string) (bool, error) {
	s.mu.Lock()
	session, ok := s.sessions[requesterID]
	if !ok || session.Stage != domain.StageAwaitingComment {
		s.mu.Unlock()
		return false, apperrors.NewNotFound("feedback session awaiting comment", map[string]any{"requester_id": requesterID})
	}
	delete(s.sessions, requesterID)
	s.mu.Unlock()

	review := domain.Review{
		ReviewerID:        session.RequesterID,
		ReviewerName:      session.RequesterName,
		Rating:            session.Rating,
		TicketDescription: session.TicketDescription,
		ResolvedBy:        session.ResolvedBy,
		Comment:           strings.TrimSpace(comment),
		PublishedAt:       s.now(),
	}

	published := true
	if err := s.messenger.SendChannelMessage(ctx, s.reviewChannel, reviewMessage(review)); err != nil {
		s.logger.Warn("review publication failed",
			zap.String("reviewer_id", review.ReviewerID), zap.Error(err))
		published = false
	}

	s.publish(ctx, events.Event{
		Type: events.EventReviewPublished,
		Payload: events.ReviewPublishedPayload{
			ReviewerID: review.ReviewerID,
			Rating:     review.Rating,
			Published:  published,
		},
	})
	return published, nil
}

// HasSession reports whether a session currently exists for the requester.
func (s *FeedbackService) HasSession(requesterID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[requesterID]
	return ok
}

// Session returns a copy of the requester's session, if any.
func (s *FeedbackService) Session(requesterID string) (domain.FeedbackSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[requesterID]
	if !ok {
		return domain.FeedbackSession{}, false
	}
	return *session, true
}

func reviewMessage(review domain.Review) platform.Message {
	stars := strings.Repeat("★", review.Rating) + strings.Repeat("☆", domain.RatingMax-review.Rating)

	color := platform.ColorError
	switch {
	case review.Rating == 5:
		color = platform.ColorAccent
	case review.Rating == 4:
		color = platform.ColorSuccess
	case review.Rating == 3:
		color = platform.ColorWarning
	}

	notice := platform.Notice{
		Title: "Customer Review",
		Body:  fmt.Sprintf("**Rating:** %d/5 %s\n**Service:** %s", review.Rating, stars, review.TicketDescription),
		Fields: []platform.NoticeField{
			{Name: "Reviewed By", Value: review.ReviewerName, Inline: true},
			{Name: "Resolved By", Value: review.ResolvedBy, Inline: true},
		},
		Color: color,
	}
	if review.Comment != "" {
		notice.Fields = append(notice.Fields, platform.NoticeField{
			Name: "Customer Comment", Value: review.Comment,
		})
	}
	return platform.Message{Notice: notice}
}

func (s *FeedbackService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
