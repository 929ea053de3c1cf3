// Package discord implements the gateway on top of a discordgo session.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/gateway"
)

// MaxMessageScan is the largest history page the platform returns.
const MaxMessageScan = 100

// Gateway is bound to one guild of an open session.
type Gateway struct {
	session *discordgo.Session
	guildID string
	logger  *zap.Logger
}

// NewSession creates a session with the intents the bot needs. The session
// is not opened.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsGuildMessages
	return session, nil
}

// NewGateway binds session to guildID.
func NewGateway(session *discordgo.Session, guildID string, logger *zap.Logger) *Gateway {
	return &Gateway{session: session, guildID: guildID, logger: logger.Named("discord")}
}

func (g *Gateway) FindCategory(ctx context.Context, name string) (*gateway.Channel, error) {
	return g.FindChannel(ctx, name, gateway.ChannelKindCategory)
}

func (g *Gateway) CreateCategory(ctx context.Context, name string) (*gateway.Channel, error) {
	return g.CreateChannel(ctx, gateway.ChannelSpec{Name: name, Kind: gateway.ChannelKindCategory})
}

func (g *Gateway) FindChannel(ctx context.Context, name string, kind gateway.ChannelKind) (*gateway.Channel, error) {
	channels, err := g.ListChannels(ctx, kind)
	if err != nil {
		return nil, err
	}
	for _, ch := range channels {
		if ch.Name == name {
			return &ch, nil
		}
	}
	return nil, gateway.ErrNotFound
}

// ListChannels fetches the guild's channels in one request and keeps those of
// the given kind.
func (g *Gateway) ListChannels(ctx context.Context, kind gateway.ChannelKind) ([]gateway.Channel, error) {
	channels, err := g.session.GuildChannels(g.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list guild channels: %w", err)
	}
	want := channelType(kind)
	out := make([]gateway.Channel, 0, len(channels))
	for _, ch := range channels {
		if ch.Type == want {
			out = append(out, toChannel(ch))
		}
	}
	return out, nil
}

func (g *Gateway) CreateChannel(ctx context.Context, spec gateway.ChannelSpec) (*gateway.Channel, error) {
	data := discordgo.GuildChannelCreateData{
		Name:     spec.Name,
		Type:     channelType(spec.Kind),
		ParentID: spec.ParentID,
	}
	for _, ow := range spec.Overwrites {
		data.PermissionOverwrites = append(data.PermissionOverwrites, g.toOverwrite(ow))
	}
	ch, err := g.session.GuildChannelCreateComplex(g.guildID, data, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("create %s channel %s: %w", spec.Kind, spec.Name, err)
	}
	out := toChannel(ch)
	return &out, nil
}

func (g *Gateway) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := g.session.ChannelDelete(channelID, discordgo.WithContext(ctx))
	if isNotFound(err) {
		g.logger.Info("channel already gone", zap.String("channel_id", channelID))
		return nil
	}
	return err
}

func (g *Gateway) PostMessage(ctx context.Context, channelID string, msg gateway.Message) (*gateway.PostedMessage, error) {
	m, err := g.session.ChannelMessageSendComplex(channelID, toMessageSend(msg), discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("send message to %s: %w", channelID, err)
	}
	posted := toPosted(m)
	return &posted, nil
}

func (g *Gateway) ListRecentMessages(ctx context.Context, channelID string, limit int) ([]gateway.PostedMessage, error) {
	if limit <= 0 || limit > MaxMessageScan {
		limit = MaxMessageScan
	}
	msgs, err := g.session.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list messages of %s: %w", channelID, err)
	}
	out := make([]gateway.PostedMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toPosted(m))
	}
	return out, nil
}

func (g *Gateway) FindRole(ctx context.Context, name string) (*gateway.Role, error) {
	roles, err := g.session.GuildRoles(g.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list guild roles: %w", err)
	}
	for _, r := range roles {
		if r.Name == name {
			return &gateway.Role{ID: r.ID, Name: r.Name}, nil
		}
	}
	return nil, gateway.ErrNotFound
}

func (g *Gateway) CreateRole(ctx context.Context, name string, perms []gateway.Permission) (*gateway.Role, error) {
	bits := PermissionBits(perms)
	r, err := g.session.GuildRoleCreate(g.guildID, &discordgo.RoleParams{Name: name, Permissions: &bits}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("create role %s: %w", name, err)
	}
	return &gateway.Role{ID: r.ID, Name: r.Name}, nil
}

func (g *Gateway) AddMemberRole(ctx context.Context, userID, roleID string) error {
	return g.session.GuildMemberRoleAdd(g.guildID, userID, roleID, discordgo.WithContext(ctx))
}

// SelfID returns the bot user's ID once the session is ready.
func (g *Gateway) SelfID() string {
	if g.session.State == nil || g.session.State.User == nil {
		return ""
	}
	return g.session.State.User.ID
}

func (g *Gateway) toOverwrite(ow gateway.Overwrite) *discordgo.PermissionOverwrite {
	out := &discordgo.PermissionOverwrite{
		Allow: PermissionBits(ow.Allow),
		Deny:  PermissionBits(ow.Deny),
	}
	switch ow.Target {
	case gateway.TargetEveryone:
		// The @everyone role shares the guild's ID.
		out.ID = g.guildID
		out.Type = discordgo.PermissionOverwriteTypeRole
	case gateway.TargetSelf:
		out.ID = g.SelfID()
		out.Type = discordgo.PermissionOverwriteTypeMember
	default:
		out.ID = ow.ID
		out.Type = discordgo.PermissionOverwriteTypeMember
	}
	return out
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

var _ gateway.Gateway = (*Gateway)(nil)
