// Package intents models inbound platform interactions as a tagged union.
// Adding a new intent means adding a type here and a case to the router's
// switch — the compiler flags anything left unhandled.
package intents

import (
	"encoding/json"
	"fmt"

	"github.com/hoodmarket/ticket-bot/internal/domain"
)

// Kind discriminates intent payloads on the wire.
type Kind string

const (
	KindCreateRequest    Kind = "create_request"
	KindCloseRequest     Kind = "close_request"
	KindConfirmClose     Kind = "confirm_close"
	KindCancelClose      Kind = "cancel_close"
	KindRatingSelected   Kind = "rating_selected"
	KindCommentSubmitted Kind = "comment_submitted"
	KindPublishPanel     Kind = "publish_panel"
	KindResetTickets     Kind = "reset_tickets"
)

// Intent is one inbound platform interaction.
type Intent interface {
	Kind() Kind
}

// CreateRequest opens a new ticket.
type CreateRequest struct {
	RequesterID   string          `json:"requester_id"`
	RequesterName string          `json:"requester_name"`
	Category      domain.Category `json:"category"`
	Description   string          `json:"description"`
}

func (CreateRequest) Kind() Kind { return KindCreateRequest }

// CloseRequest asks for closure confirmation of the ticket bound to a channel.
type CloseRequest struct {
	ChannelRef string `json:"channel_ref"`
	ActorID    string `json:"actor_id"`
	ActorName  string `json:"actor_name"`
}

func (CloseRequest) Kind() Kind { return KindCloseRequest }

// ConfirmClose finalizes closure of the ticket bound to a channel.
type ConfirmClose struct {
	ChannelRef string `json:"channel_ref"`
	ActorID    string `json:"actor_id"`
	ActorName  string `json:"actor_name"`
}

func (ConfirmClose) Kind() Kind { return KindConfirmClose }

// CancelClose abandons a pending closure confirmation.
type CancelClose struct {
	ChannelRef string `json:"channel_ref"`
}

func (CancelClose) Kind() Kind { return KindCancelClose }

// RatingSelected carries the requester's rating choice.
type RatingSelected struct {
	RequesterID string `json:"requester_id"`
	Rating      int    `json:"rating"`
}

func (RatingSelected) Kind() Kind { return KindRatingSelected }

// CommentSubmitted carries the optional free-text review comment.
type CommentSubmitted struct {
	RequesterID string `json:"requester_id"`
	Comment     string `json:"comment"`
}

func (CommentSubmitted) Kind() Kind { return KindCommentSubmitted }

// PublishPanel posts the ticket panel to a channel. Privileged.
type PublishPanel struct {
	ChannelRef string `json:"channel_ref"`
}

func (PublishPanel) Kind() Kind { return KindPublishPanel }

// ResetTickets clears the ticket namespace. Privileged, irreversible.
type ResetTickets struct {
	ActorID string `json:"actor_id"`
}

func (ResetTickets) Kind() Kind { return KindResetTickets }

// envelope is the wire shape: a kind discriminator plus the payload.
type envelope struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Parse decodes a wire envelope into the matching intent type.
func Parse(data []byte) (Intent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("intents: decode envelope: %w", err)
	}
	if len(env.Payload) == 0 {
		env.Payload = json.RawMessage("{}")
	}

	decode := func(v Intent) (Intent, error) {
		if err := json.Unmarshal(env.Payload, v); err != nil {
			return nil, fmt.Errorf("intents: decode %s payload: %w", env.Kind, err)
		}
		return v, nil
	}

	switch env.Kind {
	case KindCreateRequest:
		return decode(&CreateRequest{})
	case KindCloseRequest:
		return decode(&CloseRequest{})
	case KindConfirmClose:
		return decode(&ConfirmClose{})
	case KindCancelClose:
		return decode(&CancelClose{})
	case KindRatingSelected:
		return decode(&RatingSelected{})
	case KindCommentSubmitted:
		return decode(&CommentSubmitted{})
	case KindPublishPanel:
		return decode(&PublishPanel{})
	case KindResetTickets:
		return decode(&ResetTickets{})
	default:
		return nil, fmt.Errorf("intents: unknown kind %q", env.Kind)
	}
}
