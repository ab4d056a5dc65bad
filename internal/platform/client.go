// Package platform is the boundary to the chat platform. Channels, message
// delivery, widgets and permissions all live behind the Client interface;
// the bot only holds opaque references.
package platform

import (
	"context"

	"github.com/hoodmarket/ticket-bot/internal/domain"
)

// Client is the full platform boundary.
type Client interface {
	ChannelProvisioner
	// DeleteChannel tears down a conversation channel.
	DeleteChannel(ctx context.Context, channelRef string) error
	// ChannelMessages returns up to limit messages of a channel's history,
	// oldest first.
	ChannelMessages(ctx context.Context, channelRef string, limit int) ([]domain.MessageRecord, error)
	// SendChannelMessage delivers a message to a channel.
	SendChannelMessage(ctx context.Context, channelRef string, msg Message) error
	// SendDirectMessage delivers a message to a user's direct channel.
	SendDirectMessage(ctx context.Context, userID string, msg Message) error
}

// ChannelProvisioner is the subset the ticket registry needs: provisioning a
// ticket channel with three-party visibility (requester, admin role, default
// deny) and probing whether a referenced channel still exists.
type ChannelProvisioner interface {
	CreateTicketChannel(ctx context.Context, number int64, requesterID string) (string, error)
	ChannelExists(ctx context.Context, channelRef string) (bool, error)
}
