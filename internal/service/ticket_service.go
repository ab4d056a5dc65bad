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
	"github.com/hoodmarket/ticket-bot/internal/store"
	apperrors "github.com/hoodmarket/ticket-bot/pkg/util"
)

const systemClosedBy = "system"

// DuplicateOpenTicketError reports that the requester already has an open
// ticket. It carries the existing channel so the caller can point the
// requester there.
type DuplicateOpenTicketError struct {
	ChannelRef string
	Number     int64
}

func (e *DuplicateOpenTicketError) Error() string {
	return fmt.Sprintf("requester already has open ticket #%d", e.Number)
}

// TicketService is the ticket registry. It owns every mutation of the ticket
// namespace and the shared counter. All load-mutate-save cycles run under a
// single mutex so concurrent intents cannot interleave around the
// whole-document store and lose updates.
type TicketService struct {
	store      store.Store
	channels   platform.ChannelProvisioner
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time

	mu sync.Mutex
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store      store.Store
	Channels   platform.ChannelProvisioner
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		store:      deps.Store,
		channels:   deps.Channels,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        time.Now,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	RequesterID   string
	RequesterName string
	Category      domain.Category
	Description   string
}

// CreateTicket enforces the one-open-ticket-per-requester invariant,
// allocates the next ticket number, provisions the conversation channel and
// persists the new ticket. An open ticket whose channel has vanished is
// closed in place (only that entry) and does not block creation.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	if input.RequesterID == "" {
		return nil, apperrors.NewValidationError("requester_id required", nil)
	}
	if !input.Category.Valid() {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": input.Category})
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		description = input.Category.Label()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}

	seq := snapshot.Tickets[input.RequesterID]
	repaired := false
	for i := range seq {
		if !seq[i].IsOpen() {
			continue
		}
		exists, probeErr := s.channels.ChannelExists(ctx, seq[i].ChannelRef)
		if probeErr != nil {
			// Probe failures are not proof the channel is gone; keep the
			// conflict rather than risk a duplicate.
			s.logger.Warn("channel probe failed",
				zap.String("channel_ref", seq[i].ChannelRef), zap.Error(probeErr))
			exists = true
		}
		if exists {
			return nil, &DuplicateOpenTicketError{ChannelRef: seq[i].ChannelRef, Number: seq[i].Number}
		}
		// The channel was deleted out from under the ticket. Close only this
		// entry; the requester's history stays intact.
		now := s.now()
		closedBy := systemClosedBy
		seq[i].State = domain.TicketStateClosed
		seq[i].ClosedAt = &now
		seq[i].ClosedBy = &closedBy
		repaired = true
		s.logger.Info("closed stale ticket with missing channel",
			zap.Int64("number", seq[i].Number), zap.String("requester_id", input.RequesterID))
	}
	if repaired {
		snapshot.Tickets[input.RequesterID] = seq
		if err := s.store.Save(ctx, snapshot); err != nil {
			return nil, apperrors.NewPersistenceError(err)
		}
	}

	number := snapshot.Counter + 1
	channelRef, err := s.channels.CreateTicketChannel(ctx, number, input.RequesterID)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("provision channel: %w", err))
	}

	ticket := domain.Ticket{
		RequesterID:   input.RequesterID,
		RequesterName: input.RequesterName,
		Number:        number,
		Category:      input.Category,
		Description:   description,
		ChannelRef:    channelRef,
		State:         domain.TicketStateOpen,
		CreatedAt:     s.now(),
	}

	snapshot.Tickets[input.RequesterID] = append(seq, ticket)
	snapshot.Counter = number
	if err := s.store.Save(ctx, snapshot); err != nil {
		s.logger.Error("ticket persist failed after channel provisioning",
			zap.Int64("number", number), zap.String("channel_ref", channelRef), zap.Error(err))
		return nil, apperrors.NewPersistenceError(err)
	}

	s.publish(ctx, events.Event{
		Type: events.EventTicketCreated,
		Payload: events.TicketCreatedPayload{
			Number:      ticket.Number,
			RequesterID: ticket.RequesterID,
			Category:    ticket.Category,
			ChannelRef:  ticket.ChannelRef,
		},
	})
	return &ticket, nil
}

// FindOpenTicketByChannel scans all requesters' sequences for the open
// ticket bound to the channel. Linear in total ticket count; ticket volume
// is small and this is not a hot path.
func (s *TicketService) FindOpenTicketByChannel(ctx context.Context, channelRef string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	for _, seq := range snapshot.Tickets {
		for i := range seq {
			if seq[i].ChannelRef == channelRef && seq[i].IsOpen() {
				ticket := seq[i]
				return &ticket, nil
			}
		}
	}
	return nil, apperrors.NewNotFound("open ticket", map[string]any{"channel_ref": channelRef})
}

// CloseTicket marks the ticket closed, recording who closed it and when.
// Closing an already-closed or unknown ticket is a caller error reported as
// not found; FindOpenTicketByChannel is the natural guard.
func (s *TicketService) CloseTicket(ctx context.Context, requesterID string, number int64, closedBy string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}

	seq := snapshot.Tickets[requesterID]
	for i := range seq {
		if seq[i].Number != number || !seq[i].IsOpen() {
			continue
		}
		now := s.now()
		seq[i].State = domain.TicketStateClosed
		seq[i].ClosedAt = &now
		seq[i].ClosedBy = &closedBy
		snapshot.Tickets[requesterID] = seq
		if err := s.store.Save(ctx, snapshot); err != nil {
			return nil, apperrors.NewPersistenceError(err)
		}
		closed := seq[i]
		s.publish(ctx, events.Event{
			Type: events.EventTicketClosed,
			Payload: events.TicketClosedPayload{
				Number:      closed.Number,
				RequesterID: closed.RequesterID,
				ChannelRef:  closed.ChannelRef,
				ClosedBy:    closedBy,
			},
		})
		return &closed, nil
	}
	return nil, apperrors.NewNotFound("open ticket", map[string]any{"number": number})
}

// ResetAll clears the entire ticket namespace. The counter is preserved so
// numbering never restarts and collides with archived records. Irreversible.
func (s *TicketService) ResetAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return 0, apperrors.NewPersistenceError(err)
	}
	cleared := len(snapshot.Tickets)
	snapshot.Tickets = make(map[string][]domain.Ticket)
	if err := s.store.Save(ctx, snapshot); err != nil {
		return 0, apperrors.NewPersistenceError(err)
	}

	s.publish(ctx, events.Event{
		Type:    events.EventTicketsReset,
		Payload: events.TicketsResetPayload{RequestersCleared: cleared},
	})
	return cleared, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
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
