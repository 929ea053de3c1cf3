package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/gateway"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/repository"
	"github.com/spec-kit/ticket-bot/internal/worker"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// CloseGraceDelay is how long a closed ticket channel stays visible after the
// close acknowledgement.
const CloseGraceDelay = 5 * time.Second

// CloseControlID is the custom ID of the close button posted in every ticket.
const CloseControlID = "ticket:close"

// TicketService coordinates the ticket lifecycle.
type TicketService struct {
	store        repository.TicketStore
	gateway      gateway.Gateway
	dispatcher   events.Dispatcher
	scheduler    worker.Scheduler
	metrics      *observability.Metrics
	logger       *zap.Logger
	categoryName string
	graceDelay   time.Duration
	now          func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store        repository.TicketStore
	Gateway      gateway.Gateway
	Dispatcher   events.Dispatcher
	Scheduler    worker.Scheduler
	Metrics      *observability.Metrics
	Logger       *zap.Logger
	CategoryName string
	// GraceDelay overrides CloseGraceDelay when positive.
	GraceDelay time.Duration
}

// ProvisionedTicket is the result of a successful CreateTicket.
type ProvisionedTicket struct {
	ID      int64
	Type    domain.TicketType
	Channel gateway.Channel
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	delay := deps.GraceDelay
	if delay <= 0 {
		delay = CloseGraceDelay
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		store:        deps.Store,
		gateway:      deps.Gateway,
		dispatcher:   deps.Dispatcher,
		scheduler:    deps.Scheduler,
		metrics:      deps.Metrics,
		logger:       logger.Named("tickets"),
		categoryName: deps.CategoryName,
		graceDelay:   delay,
		now:          time.Now,
	}
}

// CreateTicket allocates a ticket and provisions its private channel. If
// provisioning fails after allocation the ticket stays allocated and open
// without a channel; the ID is never reused.
func (s *TicketService) CreateTicket(ctx context.Context, requester string, ticketType domain.TicketType) (*ProvisionedTicket, error) {
	if requester == "" {
		return nil, apperrors.NewValidationError("requester required", nil)
	}
	if !ticketType.Valid() {
		return nil, apperrors.NewValidationError("unknown ticket type", map[string]any{"type": string(ticketType)})
	}

	category, err := s.ensureCategory(ctx)
	if err != nil {
		s.metrics.RecordError("create_ticket", apperrors.CodeProvisioning)
		return nil, err
	}

	id, err := s.store.Allocate(ctx, requester, ticketType)
	if err != nil {
		s.metrics.RecordError("create_ticket", apperrors.CodePersistence)
		return nil, err
	}
	log := s.logger.With(zap.Int64("ticket_id", id), zap.String("requester", requester))

	channel, err := s.gateway.CreateChannel(ctx, gateway.ChannelSpec{
		Name:     domain.ChannelName(id),
		Kind:     gateway.ChannelKindText,
		ParentID: category.ID,
		Overwrites: []gateway.Overwrite{
			{Target: gateway.TargetEveryone, Deny: []gateway.Permission{gateway.PermissionViewChannel}},
			{Target: gateway.TargetMember, ID: requester, Allow: []gateway.Permission{gateway.PermissionViewChannel, gateway.PermissionSendMessages}},
			{Target: gateway.TargetSelf, Allow: []gateway.Permission{gateway.PermissionViewChannel, gateway.PermissionSendMessages}},
		},
	})
	if err != nil {
		log.Error("ticket allocated but channel creation failed; ticket left open without a channel", zap.Error(err))
		s.metrics.RecordError("create_ticket", apperrors.CodeProvisioning)
		return nil, apperrors.NewProvisioningError("create ticket channel", err, map[string]any{"ticket_id": id})
	}

	if _, err := s.gateway.PostMessage(ctx, channel.ID, openingMessage(requester, ticketType)); err != nil {
		log.Error("ticket channel created but opening message failed", zap.String("channel_id", channel.ID), zap.Error(err))
		s.metrics.RecordError("create_ticket", apperrors.CodeProvisioning)
		return nil, apperrors.NewProvisioningError("post opening message", err, map[string]any{"ticket_id": id, "channel_id": channel.ID})
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketOpened,
		TicketID: id,
		Actor:    requester,
		Payload: events.TicketOpenedPayload{
			TicketType:  ticketType,
			ChannelID:   channel.ID,
			ChannelName: channel.Name,
		},
	})
	s.metrics.RecordTicketOpened(string(ticketType))
	log.Info("ticket opened", zap.String("type", string(ticketType)), zap.String("channel_id", channel.ID))

	return &ProvisionedTicket{ID: id, Type: ticketType, Channel: *channel}, nil
}

// CloseTicket closes the ticket bound to channel and schedules deletion of
// the channel after the grace delay. Channels that are not ticket channels
// are rejected without side effects.
func (s *TicketService) CloseTicket(ctx context.Context, channel gateway.Channel, actor string, responder gateway.Responder) error {
	id, err := domain.ParseChannelName(channel.Name)
	if err != nil {
		return apperrors.NewValidationError("this is not a ticket channel", map[string]any{"channel": channel.Name})
	}
	log := s.logger.With(zap.Int64("ticket_id", id), zap.String("actor", actor), zap.String("channel_id", channel.ID))

	changed, err := s.store.MarkClosed(ctx, id, actor, s.now())
	if err != nil {
		s.metrics.RecordError("close_ticket", apperrors.CodePersistence)
		return err
	}
	if !changed {
		log.Warn("ticket unknown to the store or already closed; closing channel anyway")
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketClosed,
		TicketID: id,
		Actor:    actor,
		Payload: events.TicketClosedPayload{
			ChannelID:     channel.ID,
			ChannelName:   channel.Name,
			AlreadyClosed: !changed,
		},
	})
	if changed {
		s.metrics.RecordTicketClosed()
	}

	notice := fmt.Sprintf("🔒 This ticket will be closed in %d seconds...", int(s.graceDelay.Round(time.Second)/time.Second))
	if responder != nil {
		if err := responder.Respond(ctx, notice); err != nil {
			log.Warn("close acknowledgement failed", zap.Error(err))
		}
	}

	channelID := channel.ID
	scheduled := s.scheduler.After(s.graceDelay, "delete "+channel.Name, func(ctx context.Context) error {
		if err := s.gateway.DeleteChannel(ctx, channelID); err != nil {
			return fmt.Errorf("delete channel %s: %w", channelID, err)
		}
		log.Info("ticket channel deleted")
		return nil
	})
	if !scheduled {
		log.Warn("ticket closed but channel deletion was not scheduled; the channel is left in place")
		return nil
	}
	log.Info("ticket closed")
	return nil
}

// FindOrphans lists open tickets whose channel no longer exists or was
// never created. The guild's channels are listed once per call.
func (s *TicketService) FindOrphans(ctx context.Context) ([]domain.Ticket, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	channels, err := s.gateway.ListChannels(ctx, gateway.ChannelKindText)
	if err != nil {
		return nil, apperrors.NewProvisioningError("list ticket channels", err, nil)
	}
	live := make(map[string]struct{}, len(channels))
	for _, ch := range channels {
		live[ch.Name] = struct{}{}
	}

	orphans := []domain.Ticket{}
	for _, t := range snap.Tickets {
		if t.Status() != domain.TicketStatusOpen {
			continue
		}
		if _, ok := live[domain.ChannelName(t.ID)]; !ok {
			orphans = append(orphans, t)
		}
	}
	return orphans, nil
}

// Snapshot exposes the store state for read-only callers.
func (s *TicketService) Snapshot(ctx context.Context) (domain.StoreSnapshot, error) {
	return s.store.Load(ctx)
}

// GetTicket fetches a ticket by ID.
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	return s.store.Get(ctx, id)
}

func (s *TicketService) ensureCategory(ctx context.Context) (*gateway.Channel, error) {
	category, err := s.gateway.FindCategory(ctx, s.categoryName)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, gateway.ErrNotFound) {
		return nil, apperrors.NewProvisioningError("look up support category", err, nil)
	}
	category, err = s.gateway.CreateCategory(ctx, s.categoryName)
	if err != nil {
		return nil, apperrors.NewProvisioningError("create support category", err, map[string]any{"category": s.categoryName})
	}
	s.logger.Info("support category created", zap.String("category", s.categoryName))
	return category, nil
}

func openingMessage(requester string, ticketType domain.TicketType) gateway.Message {
	return gateway.Message{
		Content: fmt.Sprintf("🎫 Ticket opened by %s\nType: **%s**", gateway.MentionUser(requester), ticketType.Label()),
		Controls: []gateway.Control{{
			Kind:     gateway.ControlButton,
			CustomID: CloseControlID,
			Label:    "Close ticket",
			Style:    gateway.ButtonDanger,
		}},
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
