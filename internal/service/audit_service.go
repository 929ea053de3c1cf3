package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/gateway"
)

// Embed colors for audit records.
const (
	ColorOpened = 0x2ecc71
	ColorClosed = 0xe74c3c
)

// AuditService posts open/close records to the guild's log channel. Delivery
// is best-effort: failures are logged and never reach the caller.
type AuditService struct {
	gateway    gateway.Gateway
	dispatcher events.Dispatcher
	logger     *zap.Logger
	channel    string
	timeout    time.Duration
	now        func() time.Time
}

// NewAuditService creates the service.
func NewAuditService(gw gateway.Gateway, dispatcher events.Dispatcher, logger *zap.Logger, logChannel string, timeout time.Duration) *AuditService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AuditService{
		gateway:    gw,
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
		channel:    logChannel,
		timeout:    timeout,
		now:        time.Now,
	}
}

// RegisterHandlers subscribes to ticket events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventTicketOpened, a.handleTicketOpened)
	a.dispatcher.Subscribe(events.EventTicketClosed, a.handleTicketClosed)
}

func (a *AuditService) handleTicketOpened(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketOpenedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	a.RecordOpen(ctx, payload.TicketType, event.Actor, gateway.Channel{ID: payload.ChannelID, Name: payload.ChannelName})
	return nil
}

func (a *AuditService) handleTicketClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClosedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	a.RecordClose(ctx, gateway.Channel{ID: payload.ChannelID, Name: payload.ChannelName}, event.Actor)
	return nil
}

// RecordOpen logs a newly opened ticket.
func (a *AuditService) RecordOpen(ctx context.Context, ticketType domain.TicketType, requester string, channel gateway.Channel) {
	a.deliver(ctx, &gateway.Embed{
		Title:     "🗂️ Ticket opened",
		Color:     ColorOpened,
		Timestamp: a.now().UTC(),
		Fields: []gateway.EmbedField{
			{Name: "Ticket type", Value: ticketType.Label()},
			{Name: "Opened by", Value: gateway.MentionUser(requester)},
			{Name: "Channel", Value: gateway.MentionChannel(channel.ID)},
		},
	})
}

// RecordClose logs a closed ticket. The channel is named rather than
// mentioned because it is about to be deleted.
func (a *AuditService) RecordClose(ctx context.Context, channel gateway.Channel, actor string) {
	a.deliver(ctx, &gateway.Embed{
		Title:     "🗂️ Ticket closed",
		Color:     ColorClosed,
		Timestamp: a.now().UTC(),
		Fields: []gateway.EmbedField{
			{Name: "Channel", Value: channel.Name},
			{Name: "Closed by", Value: gateway.MentionUser(actor)},
		},
	})
}

func (a *AuditService) deliver(ctx context.Context, embed *gateway.Embed) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	logChannel, err := a.gateway.FindChannel(ctx, a.channel, gateway.ChannelKindText)
	if err != nil {
		a.logger.Warn("audit log channel unavailable", zap.String("channel", a.channel), zap.String("record", embed.Title), zap.Error(err))
		return
	}
	if _, err := a.gateway.PostMessage(ctx, logChannel.ID, gateway.Message{Embed: embed}); err != nil {
		a.logger.Warn("audit record not delivered", zap.String("channel", a.channel), zap.String("record", embed.Title), zap.Error(err))
	}
}
