package discord

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/gateway"
	"github.com/spec-kit/ticket-bot/internal/interaction"
	"github.com/spec-kit/ticket-bot/internal/service"
)

func TestPermissionBits(t *testing.T) {
	bits := PermissionBits([]gateway.Permission{gateway.PermissionViewChannel, gateway.PermissionSendMessages, "unknown"})
	assert.Equal(t, int64(discordgo.PermissionViewChannel|discordgo.PermissionSendMessages), bits)
	assert.Zero(t, PermissionBits(nil))
}

func TestOverwriteTargets(t *testing.T) {
	g := &Gateway{session: &discordgo.Session{State: discordgo.NewState()}, guildID: "guild"}
	g.session.State.User = &discordgo.User{ID: "bot"}

	everyone := g.toOverwrite(gateway.Overwrite{Target: gateway.TargetEveryone, Deny: []gateway.Permission{gateway.PermissionViewChannel}})
	assert.Equal(t, "guild", everyone.ID)
	assert.Equal(t, discordgo.PermissionOverwriteTypeRole, everyone.Type)
	assert.Equal(t, int64(discordgo.PermissionViewChannel), everyone.Deny)

	member := g.toOverwrite(gateway.Overwrite{Target: gateway.TargetMember, ID: "alice"})
	assert.Equal(t, "alice", member.ID)
	assert.Equal(t, discordgo.PermissionOverwriteTypeMember, member.Type)

	self := g.toOverwrite(gateway.Overwrite{Target: gateway.TargetSelf})
	assert.Equal(t, "bot", self.ID)
}

func TestToMessageSend(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	send := toMessageSend(gateway.Message{
		Content: "hello",
		Embed:   &gateway.Embed{Title: "t", Color: 1, Timestamp: ts, Fields: []gateway.EmbedField{{Name: "a", Value: "b"}}},
		Controls: []gateway.Control{
			{Kind: gateway.ControlSelect, CustomID: "menu", Options: []gateway.ControlOption{{Label: "General", Value: "general", Emoji: "📝"}}},
			{Kind: gateway.ControlButton, CustomID: "close", Label: "Close", Style: gateway.ButtonDanger},
		},
	})

	assert.Equal(t, "hello", send.Content)
	require.Len(t, send.Embeds, 1)
	assert.Equal(t, "2024-03-01T12:00:00Z", send.Embeds[0].Timestamp)
	require.Len(t, send.Components, 1)
	row, ok := send.Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 2)

	menu, ok := row.Components[0].(discordgo.SelectMenu)
	require.True(t, ok)
	assert.Equal(t, "📝 General", menu.Options[0].Label)
	button, ok := row.Components[1].(discordgo.Button)
	require.True(t, ok)
	assert.Equal(t, discordgo.DangerButton, button.Style)
}

func TestToPosted(t *testing.T) {
	posted := toPosted(&discordgo.Message{ID: "m", ChannelID: "c", Author: &discordgo.User{ID: "bot"}, Components: []discordgo.MessageComponent{discordgo.ActionsRow{}}})
	assert.Equal(t, gateway.PostedMessage{ID: "m", ChannelID: "c", AuthorID: "bot", HasControls: true}, posted)
}

func TestToCommand(t *testing.T) {
	member := &discordgo.Member{User: &discordgo.User{ID: "alice"}}

	cmd, ok := toCommand(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:    discordgo.InteractionMessageComponent,
		GuildID: "guild",
		Member:  member,
		Data:    discordgo.MessageComponentInteractionData{CustomID: service.SelectTicketTypeControlID, Values: []string{"itemshop"}},
	}})
	require.True(t, ok)
	assert.Equal(t, interaction.Command{Kind: interaction.KindSelectTicketType, Actor: "alice", GuildID: "guild", TicketType: domain.TicketTypeItemShop}, cmd)

	cmd, ok = toCommand(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:   discordgo.InteractionApplicationCommand,
		Member: member,
		Data:   discordgo.ApplicationCommandInteractionData{Name: CloseCommandName},
	}})
	require.True(t, ok)
	assert.Equal(t, interaction.KindCloseTicket, cmd.Kind)

	_, ok = toCommand(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionMessageComponent,
		Data: discordgo.MessageComponentInteractionData{CustomID: "someone-else"},
	}})
	assert.False(t, ok)
}
