package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/gateway"
	"github.com/spec-kit/ticket-bot/internal/interaction"
	"github.com/spec-kit/ticket-bot/internal/service"
)

// CloseCommandName is the slash command that closes the current ticket.
const CloseCommandName = "close_ticket"

// interactionTimeout bounds a single interaction, including provisioning.
const interactionTimeout = 30 * time.Second

// Dispatcher runs routed commands.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd interaction.Command, responder gateway.Responder) error
}

// Handlers connects session events to the ticket workflow.
type Handlers struct {
	GuildID string
	Router  Dispatcher
	// OnReady runs once the session is ready, typically bootstrap and panel
	// reconciliation.
	OnReady func(ctx context.Context) error
	Logger  *zap.Logger
}

// Register subscribes h to session events. The returned function removes
// the handlers.
func (h *Handlers) Register(session *discordgo.Session) func() {
	logger := h.Logger.Named("discord")
	removers := []func(){
		session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
			logger.Info("session ready", zap.String("user", r.User.Username))
			h.ready(s, logger)
		}),
		session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			h.interaction(s, i, logger)
		}),
		session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
			if m.GuildID != h.GuildID || m.Member == nil || m.Member.User == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
			defer cancel()
			_ = h.Router.Dispatch(ctx, interaction.Command{Kind: interaction.KindMemberJoined, Actor: m.Member.User.ID, GuildID: m.GuildID}, nil)
		}),
	}
	return func() {
		for _, remove := range removers {
			remove()
		}
	}
}

func (h *Handlers) ready(s *discordgo.Session, logger *zap.Logger) {
	_, err := s.ApplicationCommandCreate(s.State.User.ID, h.GuildID, &discordgo.ApplicationCommand{
		Name:        CloseCommandName,
		Description: "Close the current ticket",
	})
	if err != nil {
		logger.Warn("could not register slash command", zap.String("command", CloseCommandName), zap.Error(err))
	}
	if h.OnReady == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := h.OnReady(ctx); err != nil {
		logger.Error("startup reconciliation failed", zap.Error(err))
	}
}

func (h *Handlers) interaction(s *discordgo.Session, i *discordgo.InteractionCreate, logger *zap.Logger) {
	if i.GuildID != h.GuildID {
		return
	}
	cmd, ok := toCommand(i)
	if !ok {
		return
	}
	if cmd.Kind == interaction.KindCloseTicket {
		cmd.Channel, cmd.ChannelErr = resolveChannel(s, i.ChannelID)
	}

	responder, err := newResponder(s, i.Interaction)
	if err != nil {
		logger.Warn("could not acknowledge interaction", zap.String("kind", string(cmd.Kind)), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()
	_ = h.Router.Dispatch(ctx, cmd, responder)
}

// toCommand maps an interaction to a routed command. Interactions the bot
// does not own report false.
func toCommand(i *discordgo.InteractionCreate) (interaction.Command, bool) {
	cmd := interaction.Command{GuildID: i.GuildID, Actor: actorID(i.Interaction)}
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		switch data.CustomID {
		case service.SelectTicketTypeControlID:
			cmd.Kind = interaction.KindSelectTicketType
			if len(data.Values) > 0 {
				cmd.TicketType = domain.TicketType(data.Values[0])
			}
			return cmd, true
		case service.CloseControlID:
			cmd.Kind = interaction.KindCloseTicket
			return cmd, true
		}
	case discordgo.InteractionApplicationCommand:
		if i.ApplicationCommandData().Name == CloseCommandName {
			cmd.Kind = interaction.KindCloseTicket
			return cmd, true
		}
	}
	return interaction.Command{}, false
}

func actorID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func resolveChannel(s *discordgo.Session, channelID string) (gateway.Channel, error) {
	if s.State != nil {
		if ch, err := s.State.Channel(channelID); err == nil {
			return toChannel(ch), nil
		}
	}
	ch, err := s.Channel(channelID)
	if err != nil {
		return gateway.Channel{ID: channelID}, fmt.Errorf("fetch channel %s: %w", channelID, err)
	}
	return toChannel(ch), nil
}

// responder acknowledges the interaction immediately as a deferred private
// reply, then fills it in with the first Respond call. Later calls send
// private follow-ups.
type responder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
	edited      bool
}

func newResponder(s *discordgo.Session, i *discordgo.Interaction) (*responder, error) {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		return nil, err
	}
	return &responder{session: s, interaction: i}, nil
}

func (r *responder) Respond(ctx context.Context, text string) error {
	if !r.edited {
		r.edited = true
		_, err := r.session.InteractionResponseEdit(r.interaction, &discordgo.WebhookEdit{Content: &text}, discordgo.WithContext(ctx))
		return err
	}
	_, err := r.session.FollowupMessageCreate(r.interaction, true, &discordgo.WebhookParams{
		Content: text,
		Flags:   discordgo.MessageFlagsEphemeral,
	}, discordgo.WithContext(ctx))
	return err
}
