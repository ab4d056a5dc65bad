package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hoodmarket/ticket-bot/internal/domain"
	"github.com/hoodmarket/ticket-bot/internal/platform"
)

// ArchiveMessenger is the platform subset archival needs.
type ArchiveMessenger interface {
	SendChannelMessage(ctx context.Context, channelRef string, msg platform.Message) error
}

// ArchiveService materializes closed-ticket transcripts and delivers them to
// the archive destination. Archival is best-effort: a failure is logged by
// the caller and never blocks ticket closure.
type ArchiveService struct {
	messenger      ArchiveMessenger
	archiveChannel string
	logger         *zap.Logger
}

// NewArchiveService constructs the service.
func NewArchiveService(messenger ArchiveMessenger, archiveChannel string, logger *zap.Logger) *ArchiveService {
	return &ArchiveService{
		messenger:      messenger,
		archiveChannel: archiveChannel,
		logger:         logger,
	}
}

// Archive builds the transcript artifact and sends it with a summary notice
// to the archive channel.
func (s *ArchiveService) Archive(ctx context.Context, ticket *domain.Ticket, history []domain.MessageRecord) error {
	transcript := BuildTranscript(ticket, history)

	closedBy := systemClosedBy
	if ticket.ClosedBy != nil {
		closedBy = *ticket.ClosedBy
	}

	notice := platform.Notice{
		Title: fmt.Sprintf("Ticket Transcript #%d", ticket.Number),
		Body: fmt.Sprintf("**Service:** %s\n**Client:** %s\n**Duration:** %d minutes",
			ticket.Description, ticket.RequesterName, durationMinutes(ticket)),
		Fields: transcriptFields(ticket, closedBy),
		Color:  platform.ColorAccent,
	}

	msg := platform.Message{
		Notice: notice,
		File: &platform.File{
			Name:     fmt.Sprintf("transcript-%d.txt", ticket.Number),
			Contents: []byte(transcript),
		},
	}

	if err := s.messenger.SendChannelMessage(ctx, s.archiveChannel, msg); err != nil {
		return fmt.Errorf("deliver transcript for ticket #%d: %w", ticket.Number, err)
	}
	s.logger.Info("transcript archived", zap.Int64("number", ticket.Number))
	return nil
}
