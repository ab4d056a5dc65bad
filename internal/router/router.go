// Package router dispatches inbound platform intents to the lifecycle
// services. It holds no business logic of its own: every intent maps to
// exactly one handler and yields exactly one terminal Response, including
// when a handler fails or panics.
package router

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/hoodmarket/ticket-bot/internal/config"
	"github.com/hoodmarket/ticket-bot/internal/domain"
	"github.com/hoodmarket/ticket-bot/internal/intents"
	"github.com/hoodmarket/ticket-bot/internal/observability"
	"github.com/hoodmarket/ticket-bot/internal/platform"
	"github.com/hoodmarket/ticket-bot/internal/service"
	apperrors "github.com/hoodmarket/ticket-bot/pkg/util"
)

// Response is the single terminal reply to an inbound intent.
type Response struct {
	Notice    platform.Notice `json:"notice"`
	Widget    platform.Widget `json:"widget,omitempty"`
	Ephemeral bool            `json:"ephemeral,omitempty"`
}

// Router wires intents to the ticket, archive and feedback services.
type Router struct {
	tickets  *service.TicketService
	archive  *service.ArchiveService
	feedback *service.FeedbackService
	client   platform.Client
	cfg      config.PlatformConfig
	logger   *zap.Logger
	metrics  *observability.Metrics

	// schedule defers a function, used for channel teardown after the
	// closure grace delay. Overridable in tests.
	schedule func(delay time.Duration, fn func())
}

// Dependencies bundles router collaborators.
type Dependencies struct {
	Tickets  *service.TicketService
	Archive  *service.ArchiveService
	Feedback *service.FeedbackService
	Client   platform.Client
	Config   config.PlatformConfig
	Logger   *zap.Logger
	Metrics  *observability.Metrics
}

// New constructs the router.
func New(deps Dependencies) *Router {
	return &Router{
		tickets:  deps.Tickets,
		archive:  deps.Archive,
		feedback: deps.Feedback,
		client:   deps.Client,
		cfg:      deps.Config,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		schedule: func(delay time.Duration, fn func()) {
			time.AfterFunc(delay, fn)
		},
	}
}

// Dispatch routes one intent and always returns exactly one Response. Any
// handler error or panic is logged and collapses into a generic apology;
// internal detail never reaches the user.
func (r *Router) Dispatch(ctx context.Context, intent intents.Intent) (resp Response) {
	start := time.Now()
	kind := string(intent.Kind())
	outcome := "ok"

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("intent handler panicked",
				zap.String("kind", kind),
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()))
			outcome = "panic"
			resp = genericErrorResponse()
		}
		r.metrics.RecordIntent(kind, outcome, time.Since(start))
	}()

	resp, err := r.handle(ctx, intent)
	if err != nil {
		domainErr := apperrors.ToDomainError(err)
		r.logger.Error("intent failed",
			zap.String("kind", kind),
			zap.String("code", domainErr.Code),
			zap.Error(domainErr))
		r.metrics.RecordError(kind, domainErr.Code)
		outcome = "error"
		return genericErrorResponse()
	}
	return resp
}

func (r *Router) handle(ctx context.Context, intent intents.Intent) (Response, error) {
	switch in := intent.(type) {
	case *intents.CreateRequest:
		return r.handleCreateRequest(ctx, in)
	case *intents.CloseRequest:
		return r.handleCloseRequest(ctx, in)
	case *intents.ConfirmClose:
		return r.handleConfirmClose(ctx, in)
	case *intents.CancelClose:
		return r.handleCancelClose(ctx, in)
	case *intents.RatingSelected:
		return r.handleRatingSelected(ctx, in)
	case *intents.CommentSubmitted:
		return r.handleCommentSubmitted(ctx, in)
	case *intents.PublishPanel:
		return r.handlePublishPanel(ctx, in)
	case *intents.ResetTickets:
		return r.handleResetTickets(ctx, in)
	default:
		return Response{}, fmt.Errorf("router: unhandled intent kind %q", intent.Kind())
	}
}

func (r *Router) handleCreateRequest(ctx context.Context, in *intents.CreateRequest) (Response, error) {
	ticket, err := r.tickets.CreateTicket(ctx, service.TicketCreateInput{
		RequesterID:   in.RequesterID,
		RequesterName: in.RequesterName,
		Category:      in.Category,
		Description:   in.Description,
	})
	if err != nil {
		var dup *service.DuplicateOpenTicketError
		if errors.As(err, &dup) {
			return Response{
				Notice: platform.Notice{
					Title: "You already have an open ticket",
					Body: fmt.Sprintf("Your active ticket is <#%s>.\n\nPlease close it before creating a new one.",
						dup.ChannelRef),
					Color: platform.ColorError,
				},
				Ephemeral: true,
			}, nil
		}
		return Response{}, err
	}

	welcome := platform.Message{
		Notice: platform.Notice{
			Title: fmt.Sprintf("Ticket #%d", ticket.Number),
			Body:  "Welcome to your support channel. A staff member will be with you shortly.",
			Fields: []platform.NoticeField{
				{Name: "Service", Value: ticket.Description, Inline: true},
				{Name: "Client", Value: ticket.RequesterName, Inline: true},
			},
			Color: platform.ColorPrimary,
		},
		Widget: platform.WidgetCloseButton,
	}
	if err := r.client.SendChannelMessage(ctx, ticket.ChannelRef, welcome); err != nil {
		r.logger.Warn("welcome message delivery failed",
			zap.String("channel_ref", ticket.ChannelRef), zap.Error(err))
	}

	return Response{
		Notice: platform.Notice{
			Title: "Ticket created",
			Body: fmt.Sprintf("**Channel:** <#%s>\n**Service:** %s\n\nOur team will assist you shortly.",
				ticket.ChannelRef, ticket.Description),
			Color: platform.ColorSuccess,
		},
		Ephemeral: true,
	}, nil
}

func (r *Router) handleCloseRequest(ctx context.Context, in *intents.CloseRequest) (Response, error) {
	return Response{
		Notice: platform.Notice{
			Title: "Close this ticket?",
			Body:  "A feedback request will be sent to the requester.",
			Color: platform.ColorError,
		},
		Widget:    platform.WidgetCloseConfirm,
		Ephemeral: true,
	}, nil
}

func (r *Router) handleConfirmClose(ctx context.Context, in *intents.ConfirmClose) (Response, error) {
	ticket, err := r.tickets.FindOpenTicketByChannel(ctx, in.ChannelRef)
	if err != nil {
		domainErr := apperrors.ToDomainError(err)
		if domainErr.Code != "NOT_FOUND" {
			return Response{}, err
		}
		// No tracked ticket for this channel; tear it down anyway.
		r.scheduleTeardown(in.ChannelRef)
		return Response{
			Notice: platform.Notice{
				Title: "No open ticket here",
				Body:  "This channel is not tracked; it will be removed shortly.",
				Color: platform.ColorWarning,
			},
			Ephemeral: true,
		}, nil
	}

	history, err := r.client.ChannelMessages(ctx, in.ChannelRef, r.cfg.HistoryFetchLimit)
	if err != nil {
		r.logger.Warn("history fetch failed, archiving without messages",
			zap.String("channel_ref", in.ChannelRef), zap.Error(err))
		history = nil
	}

	closedBy := in.ActorName
	if closedBy == "" {
		closedBy = in.ActorID
	}

	closed, err := r.tickets.CloseTicket(ctx, ticket.RequesterID, ticket.Number, closedBy)
	if err != nil {
		return Response{}, err
	}

	// Archival is advisory: a failure is logged and closure stands.
	if err := r.archive.Archive(ctx, closed, history); err != nil {
		r.logger.Error("archival failed", zap.Int64("number", closed.Number), zap.Error(err))
	}

	// The rating prompt is likewise best-effort; an unreachable requester
	// leaves the session stalled, not the closure failed.
	if err := r.feedback.StartSession(ctx, closed.RequesterID, closed.RequesterName, closed.Description, closedBy); err != nil {
		r.logger.Warn("feedback prompt delivery failed",
			zap.String("requester_id", closed.RequesterID), zap.Error(err))
	}

	closingNotice := platform.Message{
		Notice: platform.Notice{
			Title: "Ticket closed",
			Body: fmt.Sprintf("Closed by %s.\n\n• Transcript saved\n• Feedback request sent\n• This channel will be removed shortly",
				closedBy),
			Color: platform.ColorSuccess,
		},
	}
	if err := r.client.SendChannelMessage(ctx, in.ChannelRef, closingNotice); err != nil {
		r.logger.Warn("closing notice delivery failed",
			zap.String("channel_ref", in.ChannelRef), zap.Error(err))
	}

	r.scheduleTeardown(in.ChannelRef)

	return Response{
		Notice: platform.Notice{
			Title: fmt.Sprintf("Ticket #%d closed", closed.Number),
			Color: platform.ColorSuccess,
		},
		Ephemeral: true,
	}, nil
}

func (r *Router) handleCancelClose(ctx context.Context, in *intents.CancelClose) (Response, error) {
	return Response{
		Notice: platform.Notice{
			Title: "Ticket closure cancelled.",
			Color: platform.ColorSuccess,
		},
		Ephemeral: true,
	}, nil
}

func (r *Router) handleRatingSelected(ctx context.Context, in *intents.RatingSelected) (Response, error) {
	if err := r.feedback.RecordRating(ctx, in.RequesterID, in.Rating); err != nil {
		domainErr := apperrors.ToDomainError(err)
		if domainErr.Code == "NOT_FOUND" || domainErr.Code == "VALIDATION_FAILED" {
			return Response{
				Notice: platform.Notice{
					Title: "No pending feedback request",
					Body:  "There is nothing waiting for your rating right now.",
					Color: platform.ColorWarning,
				},
				Ephemeral: true,
			}, nil
		}
		return Response{}, err
	}

	return Response{
		Notice: platform.Notice{
			Title: "Almost done",
			Body:  "Would you like to add a comment? It's optional.",
			Color: platform.ColorAccent,
		},
		Widget:    platform.WidgetCommentInput,
		Ephemeral: true,
	}, nil
}

func (r *Router) handleCommentSubmitted(ctx context.Context, in *intents.CommentSubmitted) (Response, error) {
	published, err := r.feedback.Finalize(ctx, in.RequesterID, in.Comment)
	if err != nil {
		domainErr := apperrors.ToDomainError(err)
		if domainErr.Code == "NOT_FOUND" {
			return Response{
				Notice: platform.Notice{
					Title: "No pending feedback request",
					Body:  "There is nothing waiting for your comment right now.",
					Color: platform.ColorWarning,
				},
				Ephemeral: true,
			}, nil
		}
		return Response{}, err
	}
	if !published {
		r.logger.Warn("review was not published", zap.String("requester_id", in.RequesterID))
	}

	return Response{
		Notice: platform.Notice{
			Title: "Thank you for your feedback!",
			Body:  "Your review helps us keep our service quality up.",
			Color: platform.ColorSuccess,
		},
		Ephemeral: true,
	}, nil
}

func (r *Router) handlePublishPanel(ctx context.Context, in *intents.PublishPanel) (Response, error) {
	channelRef := in.ChannelRef
	if channelRef == "" {
		channelRef = r.cfg.PanelChannelID
	}
	if channelRef == "" {
		return Response{}, apperrors.NewValidationError("panel channel not configured", nil)
	}

	fields := make([]platform.NoticeField, 0, len(domain.Categories()))
	for _, category := range domain.Categories() {
		fields = append(fields, platform.NoticeField{
			Name: category.Label(), Value: string(category), Inline: true,
		})
	}

	panel := platform.Message{
		Notice: platform.Notice{
			Title:  "Support Tickets",
			Body:   "Open a ticket to reach our team. Staff will only ever respond inside your ticket channel.",
			Fields: fields,
			Color:  platform.ColorPrimary,
		},
		Widget: platform.WidgetCategorySelect,
	}
	if err := r.client.SendChannelMessage(ctx, channelRef, panel); err != nil {
		return Response{}, apperrors.NewInternalError(fmt.Errorf("publish panel: %w", err))
	}

	return Response{
		Notice: platform.Notice{
			Title: "Ticket panel published.",
			Color: platform.ColorSuccess,
		},
		Ephemeral: true,
	}, nil
}

func (r *Router) handleResetTickets(ctx context.Context, in *intents.ResetTickets) (Response, error) {
	cleared, err := r.tickets.ResetAll(ctx)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Notice: platform.Notice{
			Title: "Ticket data reset",
			Body:  fmt.Sprintf("Cleared ticket history for %d requesters. Numbering continues where it left off.", cleared),
			Color: platform.ColorSuccess,
		},
		Ephemeral: true,
	}, nil
}

// scheduleTeardown removes the channel after the grace delay so the closing
// notice stays visible for a moment. A failed delete (channel already gone)
// is swallowed.
func (r *Router) scheduleTeardown(channelRef string) {
	r.schedule(r.cfg.TeardownDelay(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.RequestTimeout())
		defer cancel()
		if err := r.client.DeleteChannel(ctx, channelRef); err != nil {
			r.logger.Debug("channel teardown failed",
				zap.String("channel_ref", channelRef), zap.Error(err))
		}
	})
}

func genericErrorResponse() Response {
	return Response{
		Notice: platform.Notice{
			Title: "Something went wrong",
			Body:  "An error occurred on our side. Please try again.",
			Color: platform.ColorError,
		},
		Ephemeral: true,
	}
}
