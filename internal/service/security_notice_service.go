package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hoodmarket/ticket-bot/internal/platform"
)

// NoticeBoard is the platform subset the security broadcast needs: posting a
// message whose reference can be recalled, and deleting a single message.
type NoticeBoard interface {
	PostChannelMessage(ctx context.Context, channelRef string, msg platform.Message) (string, error)
	DeleteChannelMessage(ctx context.Context, channelRef, messageRef string) error
}

// SecurityNoticeService periodically posts the anti-scam warning to the
// ticket category channel. Each broadcast replaces the previous one so the
// notice stays near the bottom of the channel instead of piling up.
type SecurityNoticeService struct {
	board      NoticeBoard
	channelRef string
	interval   time.Duration
	logger     *zap.Logger

	mu             sync.Mutex
	lastMessageRef string
}

// NewSecurityNoticeService constructs the service.
func NewSecurityNoticeService(board NoticeBoard, channelRef string, interval time.Duration, logger *zap.Logger) *SecurityNoticeService {
	return &SecurityNoticeService{
		board:      board,
		channelRef: channelRef,
		interval:   interval,
		logger:     logger,
	}
}

// Run broadcasts once immediately, then on every interval tick until the
// context is cancelled. A failed broadcast is logged and retried on the next
// tick.
func (s *SecurityNoticeService) Run(ctx context.Context) {
	if s.channelRef == "" {
		s.logger.Warn("security notice channel not configured, broadcasts disabled")
		return
	}

	if err := s.Broadcast(ctx); err != nil {
		s.logger.Warn("security notice broadcast failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Broadcast(ctx); err != nil {
				s.logger.Warn("security notice broadcast failed", zap.Error(err))
			}
		}
	}
}

// Broadcast deletes the previous notice, if any, and posts a fresh one. The
// delete is best-effort; the message may already be gone.
func (s *SecurityNoticeService) Broadcast(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastMessageRef != "" {
		if err := s.board.DeleteChannelMessage(ctx, s.channelRef, s.lastMessageRef); err != nil {
			s.logger.Debug("previous security notice already gone",
				zap.String("message_ref", s.lastMessageRef), zap.Error(err))
		}
		s.lastMessageRef = ""
	}

	messageRef, err := s.board.PostChannelMessage(ctx, s.channelRef, securityNotice())
	if err != nil {
		return fmt.Errorf("post security notice: %w", err)
	}
	s.lastMessageRef = messageRef
	return nil
}

func securityNotice() platform.Message {
	return platform.Message{
		Notice: platform.Notice{
			Title: "Security Alert",
			Body:  "**Important security notice, please read before trading.**",
			Fields: []platform.NoticeField{
				{
					Name:  "Staff will never message you first",
					Value: "After you create a ticket, our staff will never contact you directly. Do not trust anyone claiming they can help you outside the ticket system.",
				},
				{
					Name:  "Watch out for scammers",
					Value: "Do not trust anybody claiming they saw your ticket, can see your ticket or offer quick help in DMs. These are scammers trying to steal from you.",
				},
				{
					Name:  "Legitimate staff",
					Value: "Will only respond in your ticket channel, hold official staff roles and will never ask for your password.",
				},
			},
			Color: platform.ColorWarning,
		},
	}
}
