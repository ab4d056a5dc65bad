package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hoodmarket/ticket-bot/internal/domain"
)

func closedTicket(number int64) *domain.Ticket {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	closed := created.Add(90 * time.Minute)
	closedBy := "Staffer"
	return &domain.Ticket{
		RequesterID:   "u1",
		RequesterName: "Alice",
		Number:        number,
		Category:      domain.CategoryServices,
		Description:   "logo design",
		ChannelRef:    "chan-7",
		State:         domain.TicketStateClosed,
		CreatedAt:     created,
		ClosedAt:      &closed,
		ClosedBy:      &closedBy,
	}
}

func TestBuildTranscript(t *testing.T) {
	ticket := closedTicket(7)
	history := []domain.MessageRecord{
		{
			Author:    "Alice",
			Timestamp: time.Date(2025, 3, 1, 10, 5, 30, 0, time.UTC),
			Body:      "hi, I need a logo",
		},
		{
			Author:      "Staffer",
			Timestamp:   time.Date(2025, 3, 1, 10, 6, 0, 0, time.UTC),
			Body:        "here's a draft",
			Attachments: []string{"draft-v1.png", "draft-v2.png"},
		},
	}

	transcript := BuildTranscript(ticket, history)

	assert.Contains(t, transcript, "TICKET TRANSCRIPT #7")
	assert.Contains(t, transcript, "Service: logo design")
	assert.Contains(t, transcript, "Category: Buying Services")
	assert.Contains(t, transcript, "Client: Alice (u1)")
	assert.Contains(t, transcript, "Closed By: Staffer")
	assert.Contains(t, transcript, "Duration: 90 minutes")
	assert.Contains(t, transcript, "[10:05:30] Alice: hi, I need a logo")
	assert.Contains(t, transcript, "[10:06:00] Staffer: here's a draft")
	assert.Contains(t, transcript, "Attachments: draft-v1.png, draft-v2.png")

	// Messages appear in the order given, after the header.
	first := strings.Index(transcript, "hi, I need a logo")
	second := strings.Index(transcript, "here's a draft")
	assert.Less(t, first, second)
}

func TestBuildTranscriptWithoutCloser(t *testing.T) {
	ticket := closedTicket(3)
	ticket.ClosedBy = nil

	transcript := BuildTranscript(ticket, nil)
	assert.Contains(t, transcript, "Closed By: system")
}

func TestArchiveSendsTranscriptFile(t *testing.T) {
	messenger := &fakeMessenger{}
	svc := NewArchiveService(messenger, "archive", zap.NewNop())

	history := []domain.MessageRecord{
		{Author: "Alice", Timestamp: time.Now(), Body: "hello"},
	}
	require.NoError(t, svc.Archive(context.Background(), closedTicket(7), history))

	require.Len(t, messenger.channelMsgs, 1)
	sent := messenger.channelMsgs[0]
	assert.Equal(t, "archive", sent.target)
	assert.Equal(t, "Ticket Transcript #7", sent.msg.Notice.Title)

	require.NotNil(t, sent.msg.File)
	assert.Equal(t, "transcript-7.txt", sent.msg.File.Name)
	assert.Contains(t, string(sent.msg.File.Contents), "TICKET TRANSCRIPT #7")
	assert.Contains(t, string(sent.msg.File.Contents), "hello")
}

func TestArchiveDeliveryFailure(t *testing.T) {
	messenger := &fakeMessenger{channelErr: errors.New("channel gone")}
	svc := NewArchiveService(messenger, "archive", zap.NewNop())

	err := svc.Archive(context.Background(), closedTicket(7), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ticket #7")
}
