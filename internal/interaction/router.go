// Package interaction turns inbound platform interactions into ticket
// operations and acknowledges every outcome to the member who triggered it.
package interaction

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/gateway"
	"github.com/spec-kit/ticket-bot/internal/service"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// Kind tags an inbound command.
type Kind string

const (
	KindSelectTicketType Kind = "select_ticket_type"
	KindCloseTicket      Kind = "close_ticket"
	KindMemberJoined     Kind = "member_joined"
)

// Command is one inbound interaction. Fields not used by Kind are ignored.
type Command struct {
	Kind       Kind
	Actor      string
	Channel    gateway.Channel
	TicketType domain.TicketType
	GuildID    string
	// ChannelErr is set when Channel could not be resolved from the platform.
	ChannelErr error
}

// TicketHandler is the lifecycle surface the router drives.
type TicketHandler interface {
	CreateTicket(ctx context.Context, requester string, ticketType domain.TicketType) (*service.ProvisionedTicket, error)
	CloseTicket(ctx context.Context, channel gateway.Channel, actor string, responder gateway.Responder) error
}

// MemberHandler reacts to members joining the guild.
type MemberHandler interface {
	OnMemberJoined(ctx context.Context, userID string)
}

const retryMessage = "⚠️ Something went wrong while handling your request. Please try again in a moment."

// Router dispatches commands by kind.
type Router struct {
	tickets TicketHandler
	members MemberHandler
	logger  *zap.Logger
}

// NewRouter creates a router. members may be nil.
func NewRouter(tickets TicketHandler, members MemberHandler, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{tickets: tickets, members: members, logger: logger.Named("interaction")}
}

// Dispatch runs cmd. Ticket commands always produce a reply through
// responder: a confirmation, a rejection for validation errors, or a retry
// hint for transient ones. The error is returned for the caller's logs.
func (r *Router) Dispatch(ctx context.Context, cmd Command, responder gateway.Responder) error {
	log := r.logger.With(
		zap.String("interaction_id", uuid.NewString()),
		zap.String("kind", string(cmd.Kind)),
		zap.String("actor", cmd.Actor),
	)

	switch cmd.Kind {
	case KindSelectTicketType:
		ticket, err := r.tickets.CreateTicket(ctx, cmd.Actor, cmd.TicketType)
		if err != nil {
			return r.fail(ctx, log, responder, err)
		}
		r.reply(ctx, log, responder, "✅ Ticket created: "+gateway.MentionChannel(ticket.Channel.ID))
		return nil

	case KindCloseTicket:
		if cmd.ChannelErr != nil {
			return r.fail(ctx, log, responder, apperrors.NewProvisioningError("resolve interaction channel", cmd.ChannelErr, map[string]any{"channel_id": cmd.Channel.ID}))
		}
		if err := r.tickets.CloseTicket(ctx, cmd.Channel, cmd.Actor, responder); err != nil {
			return r.fail(ctx, log, responder, err)
		}
		return nil

	case KindMemberJoined:
		if r.members != nil {
			r.members.OnMemberJoined(ctx, cmd.Actor)
		}
		return nil

	default:
		return r.fail(ctx, log, responder, apperrors.NewValidationError("unsupported interaction", map[string]any{"kind": string(cmd.Kind)}))
	}
}

func (r *Router) fail(ctx context.Context, log *zap.Logger, responder gateway.Responder, err error) error {
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Retryable() {
		log.Error("interaction failed", zap.String("code", domainErr.Code), zap.Error(err))
		r.reply(ctx, log, responder, retryMessage)
		return err
	}
	log.Info("interaction rejected", zap.String("code", domainErr.Code), zap.Error(err))
	r.reply(ctx, log, responder, "❌ "+capitalize(domainErr.Message)+".")
	return err
}

func (r *Router) reply(ctx context.Context, log *zap.Logger, responder gateway.Responder, text string) {
	if responder == nil {
		return
	}
	if err := responder.Respond(ctx, text); err != nil {
		log.Warn("interaction reply failed", zap.Error(err))
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}
