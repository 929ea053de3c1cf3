package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/spec-kit/ticket-bot/internal/gateway"
)

var permissionBits = map[gateway.Permission]int64{
	gateway.PermissionAll:            discordgo.PermissionAll,
	gateway.PermissionAdministrator:  discordgo.PermissionAdministrator,
	gateway.PermissionViewChannel:    discordgo.PermissionViewChannel,
	gateway.PermissionSendMessages:   discordgo.PermissionSendMessages,
	gateway.PermissionConnect:        discordgo.PermissionVoiceConnect,
	gateway.PermissionCreateInvite:   discordgo.PermissionCreateInstantInvite,
	gateway.PermissionKickMembers:    discordgo.PermissionKickMembers,
	gateway.PermissionBanMembers:     discordgo.PermissionBanMembers,
	gateway.PermissionMuteMembers:    discordgo.PermissionVoiceMuteMembers,
	gateway.PermissionDeafenMembers:  discordgo.PermissionVoiceDeafenMembers,
	gateway.PermissionMoveMembers:    discordgo.PermissionVoiceMoveMembers,
	gateway.PermissionManageChannels: discordgo.PermissionManageChannels,
}

// PermissionBits folds named permissions into the platform bitset. Unknown
// names are ignored.
func PermissionBits(perms []gateway.Permission) int64 {
	var bits int64
	for _, p := range perms {
		bits |= permissionBits[p]
	}
	return bits
}

func channelType(kind gateway.ChannelKind) discordgo.ChannelType {
	switch kind {
	case gateway.ChannelKindCategory:
		return discordgo.ChannelTypeGuildCategory
	case gateway.ChannelKindVoice:
		return discordgo.ChannelTypeGuildVoice
	default:
		return discordgo.ChannelTypeGuildText
	}
}

func channelKind(t discordgo.ChannelType) gateway.ChannelKind {
	switch t {
	case discordgo.ChannelTypeGuildCategory:
		return gateway.ChannelKindCategory
	case discordgo.ChannelTypeGuildVoice:
		return gateway.ChannelKindVoice
	default:
		return gateway.ChannelKindText
	}
}

func toChannel(ch *discordgo.Channel) gateway.Channel {
	return gateway.Channel{ID: ch.ID, Name: ch.Name, Kind: channelKind(ch.Type), ParentID: ch.ParentID}
}

func toPosted(m *discordgo.Message) gateway.PostedMessage {
	out := gateway.PostedMessage{ID: m.ID, ChannelID: m.ChannelID, HasControls: len(m.Components) > 0}
	if m.Author != nil {
		out.AuthorID = m.Author.ID
	}
	return out
}

func toMessageSend(msg gateway.Message) *discordgo.MessageSend {
	send := &discordgo.MessageSend{Content: msg.Content}
	if msg.Embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{toEmbed(msg.Embed)}
	}
	if len(msg.Controls) > 0 {
		row := discordgo.ActionsRow{}
		for _, c := range msg.Controls {
			row.Components = append(row.Components, toComponent(c))
		}
		send.Components = []discordgo.MessageComponent{row}
	}
	return send
}

func toEmbed(e *gateway.Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{Title: e.Title, Color: e.Color}
	if !e.Timestamp.IsZero() {
		out.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return out
}

func toComponent(c gateway.Control) discordgo.MessageComponent {
	if c.Kind == gateway.ControlSelect {
		menu := discordgo.SelectMenu{
			MenuType:    discordgo.StringSelectMenu,
			CustomID:    c.CustomID,
			Placeholder: c.Placeholder,
		}
		for _, o := range c.Options {
			label := o.Label
			if o.Emoji != "" {
				label = o.Emoji + " " + label
			}
			menu.Options = append(menu.Options, discordgo.SelectMenuOption{Label: label, Value: o.Value, Description: o.Description})
		}
		return menu
	}
	style := discordgo.PrimaryButton
	if c.Style == gateway.ButtonDanger {
		style = discordgo.DangerButton
	}
	return discordgo.Button{Label: c.Label, Style: style, CustomID: c.CustomID}
}
