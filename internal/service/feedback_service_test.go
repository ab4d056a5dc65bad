package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hoodmarket/ticket-bot/internal/domain"
	"github.com/hoodmarket/ticket-bot/internal/events"
	"github.com/hoodmarket/ticket-bot/internal/platform"
	apperrors "github.com/hoodmarket/ticket-bot/pkg/util"
)

type sentMessage struct {
	target string
	msg    platform.Message
}

// fakeMessenger records deliveries and can fail either direction.
type fakeMessenger struct {
	mu          sync.Mutex
	dms         []sentMessage
	channelMsgs []sentMessage
	dmErr       error
	channelErr  error
}

func (f *fakeMessenger) SendDirectMessage(ctx context.Context, userID string, msg platform.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dmErr != nil {
		return f.dmErr
	}
	f.dms = append(f.dms, sentMessage{target: userID, msg: msg})
	return nil
}

func (f *fakeMessenger) SendChannelMessage(ctx context.Context, channelRef string, msg platform.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.channelErr != nil {
		return f.channelErr
	}
	f.channelMsgs = append(f.channelMsgs, sentMessage{target: channelRef, msg: msg})
	return nil
}

const testReviewChannel = "reviews"

func newFeedbackService(messenger *fakeMessenger, dispatcher events.Dispatcher) *FeedbackService {
	return NewFeedbackService(messenger, testReviewChannel, dispatcher, zap.NewNop())
}

func TestFeedbackHappyPath(t *testing.T) {
	messenger := &fakeMessenger{}
	svc := newFeedbackService(messenger, nil)

	require.NoError(t, svc.StartSession(context.Background(), "u1", "Alice", "logo design", "Staffer"))

	session, ok := svc.Session("u1")
	require.True(t, ok)
	assert.Equal(t, domain.StageAwaitingRating, session.Stage)
	require.Len(t, messenger.dms, 1)
	assert.Equal(t, "u1", messenger.dms[0].target)
	assert.Equal(t, platform.WidgetRatingSelect, messenger.dms[0].msg.Widget)

	require.NoError(t, svc.RecordRating(context.Background(), "u1", 4))
	session, ok = svc.Session("u1")
	require.True(t, ok)
	assert.Equal(t, domain.StageAwaitingComment, session.Stage)
	assert.Equal(t, 4, session.Rating)

	published, err := svc.Finalize(context.Background(), "u1", "  great work  ")
	require.NoError(t, err)
	assert.True(t, published)
	assert.False(t, svc.HasSession("u1"))

	require.Len(t, messenger.channelMsgs, 1)
	review := messenger.channelMsgs[0]
	assert.Equal(t, testReviewChannel, review.target)
	assert.Contains(t, review.msg.Notice.Body, "4/5")
	assert.Contains(t, review.msg.Notice.Body, "★★★★☆")

	var commentField *platform.NoticeField
	for i := range review.msg.Notice.Fields {
		if review.msg.Notice.Fields[i].Name == "Customer Comment" {
			commentField = &review.msg.Notice.Fields[i]
		}
	}
	require.NotNil(t, commentField)
	assert.Equal(t, "great work", commentField.Value)
}

func TestRatingWithoutSession(t *testing.T) {
	svc := newFeedbackService(&fakeMessenger{}, nil)

	err := svc.RecordRating(context.Background(), "u1", 5)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestRatingOutOfRange(t *testing.T) {
	svc := newFeedbackService(&fakeMessenger{}, nil)
	require.NoError(t, svc.StartSession(context.Background(), "u1", "Alice", "svc", "Staffer"))

	for _, rating := range []int{0, 6, -3} {
		err := svc.RecordRating(context.Background(), "u1", rating)
		require.Error(t, err, "rating %d", rating)
		assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
	}
}

func TestRatingRecordedOnlyOnce(t *testing.T) {
	svc := newFeedbackService(&fakeMessenger{}, nil)
	require.NoError(t, svc.StartSession(context.Background(), "u1", "Alice", "svc", "Staffer"))
	require.NoError(t, svc.RecordRating(context.Background(), "u1", 3))

	err := svc.RecordRating(context.Background(), "u1", 5)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	session, _ := svc.Session("u1")
	assert.Equal(t, 3, session.Rating)
}

func TestCommentBeforeRatingRejected(t *testing.T) {
	svc := newFeedbackService(&fakeMessenger{}, nil)
	require.NoError(t, svc.StartSession(context.Background(), "u1", "Alice", "svc", "Staffer"))

	_, err := svc.Finalize(context.Background(), "u1", "too early")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	// The session is untouched; the requester can still rate.
	assert.True(t, svc.HasSession("u1"))
	assert.NoError(t, svc.RecordRating(context.Background(), "u1", 5))
}

func TestStartSessionReplacesPrevious(t *testing.T) {
	svc := newFeedbackService(&fakeMessenger{}, nil)
	require.NoError(t, svc.StartSession(context.Background(), "u1", "Alice", "first ticket", "Staffer"))
	require.NoError(t, svc.RecordRating(context.Background(), "u1", 5))

	require.NoError(t, svc.StartSession(context.Background(), "u1", "Alice", "second ticket", "Other Staffer"))

	session, ok := svc.Session("u1")
	require.True(t, ok)
	assert.Equal(t, domain.StageAwaitingRating, session.Stage)
	assert.Equal(t, "second ticket", session.TicketDescription)
	assert.Zero(t, session.Rating)
}

func TestPromptDeliveryFailureKeepsSession(t *testing.T) {
	messenger := &fakeMessenger{dmErr: errors.New("dms closed")}
	svc := newFeedbackService(messenger, nil)

	err := svc.StartSession(context.Background(), "u1", "Alice", "svc", "Staffer")
	require.Error(t, err)

	// The workflow stalls but does not lose the session: a later rating
	// intent still lands.
	assert.True(t, svc.HasSession("u1"))
	assert.NoError(t, svc.RecordRating(context.Background(), "u1", 4))
}

func TestPublishFailureDiscardsSession(t *testing.T) {
	messenger := &fakeMessenger{channelErr: errors.New("review channel gone")}
	dispatcher := events.NewInMemoryDispatcher()
	var payload events.ReviewPublishedPayload
	dispatcher.Subscribe(events.EventReviewPublished, func(ctx context.Context, event events.Event) error {
		payload = event.Payload.(events.ReviewPublishedPayload)
		return nil
	})
	svc := newFeedbackService(messenger, dispatcher)

	require.NoError(t, svc.StartSession(context.Background(), "u1", "Alice", "svc", "Staffer"))
	require.NoError(t, svc.RecordRating(context.Background(), "u1", 2))

	published, err := svc.Finalize(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.False(t, published)

	// The prompt is one-shot: the session is gone even though nothing was
	// published.
	assert.False(t, svc.HasSession("u1"))
	assert.Equal(t, "u1", payload.ReviewerID)
	assert.Equal(t, 2, payload.Rating)
	assert.False(t, payload.Published)
}

func TestDefaultResolvedBy(t *testing.T) {
	svc := newFeedbackService(&fakeMessenger{}, nil)
	require.NoError(t, svc.StartSession(context.Background(), "u1", "Alice", "svc", ""))

	session, ok := svc.Session("u1")
	require.True(t, ok)
	assert.Equal(t, "our support team", session.ResolvedBy)
}

func TestSessionsDoNotSurviveRestart(t *testing.T) {
	messenger := &fakeMessenger{}
	svc := newFeedbackService(messenger, nil)
	require.NoError(t, svc.StartSession(context.Background(), "u1", "Alice", "svc", "Staffer"))
	require.NoError(t, svc.RecordRating(context.Background(), "u1", 5))

	// A fresh process holds no sessions; pending feedback is lost.
	restarted := newFeedbackService(messenger, nil)
	assert.False(t, restarted.HasSession("u1"))

	_, err := restarted.Finalize(context.Background(), "u1", "lost")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestReviewMessageColorTracksRating(t *testing.T) {
	cases := []struct {
		rating int
		color  int
	}{
		{5, platform.ColorAccent},
		{4, platform.ColorSuccess},
		{3, platform.ColorWarning},
		{2, platform.ColorError},
		{1, platform.ColorError},
	}
	for _, tc := range cases {
		msg := reviewMessage(domain.Review{Rating: tc.rating, ReviewerName: "Alice", ResolvedBy: "Staffer"})
		assert.Equal(t, tc.color, msg.Notice.Color, "rating %d", tc.rating)
		assert.Equal(t, strings.Count(msg.Notice.Body, "★"), tc.rating)
	}
}
