// Package gateway describes the chat platform operations the ticket workflow
// depends on. Implementations are bound to a single guild.
package gateway

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by lookups when nothing matches the name.
var ErrNotFound = errors.New("not found")

// ChannelKind distinguishes the channel types the bot creates.
type ChannelKind string

const (
	ChannelKindText     ChannelKind = "text"
	ChannelKindVoice    ChannelKind = "voice"
	ChannelKindCategory ChannelKind = "category"
)

// Permission names a platform capability independent of its bit value.
type Permission string

const (
	PermissionAll            Permission = "all"
	PermissionAdministrator  Permission = "administrator"
	PermissionViewChannel    Permission = "view_channel"
	PermissionSendMessages   Permission = "send_messages"
	PermissionConnect        Permission = "connect"
	PermissionCreateInvite   Permission = "create_instant_invite"
	PermissionKickMembers    Permission = "kick_members"
	PermissionBanMembers     Permission = "ban_members"
	PermissionMuteMembers    Permission = "mute_members"
	PermissionDeafenMembers  Permission = "deafen_members"
	PermissionMoveMembers    Permission = "move_members"
	PermissionManageChannels Permission = "manage_channels"
)

// OverwriteTarget selects who a visibility overwrite applies to.
type OverwriteTarget string

const (
	TargetEveryone OverwriteTarget = "everyone"
	TargetMember   OverwriteTarget = "member"
	TargetSelf     OverwriteTarget = "self"
)

// Overwrite grants or denies permissions on one channel. ID is only used
// with TargetMember.
type Overwrite struct {
	Target OverwriteTarget
	ID     string
	Allow  []Permission
	Deny   []Permission
}

// Channel references a guild channel or category.
type Channel struct {
	ID       string
	Name     string
	Kind     ChannelKind
	ParentID string
}

// ChannelSpec describes a channel to create.
type ChannelSpec struct {
	Name       string
	Kind       ChannelKind
	ParentID   string
	Overwrites []Overwrite
}

// Role references a guild role.
type Role struct {
	ID   string
	Name string
}

// ControlKind tags the interactive components a message can carry.
type ControlKind string

const (
	ControlSelect ControlKind = "select"
	ControlButton ControlKind = "button"
)

// ButtonStyle mirrors the platform's button colors.
type ButtonStyle string

const (
	ButtonPrimary ButtonStyle = "primary"
	ButtonDanger  ButtonStyle = "danger"
)

// ControlOption is one entry of a select control.
type ControlOption struct {
	Label       string
	Value       string
	Description string
	Emoji       string
}

// Control is an interactive component attached to a message.
type Control struct {
	Kind        ControlKind
	CustomID    string
	Label       string
	Placeholder string
	Style       ButtonStyle
	Options     []ControlOption
}

// EmbedField is a name/value row of an embed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a structured rich message block.
type Embed struct {
	Title     string
	Color     int
	Timestamp time.Time
	Fields    []EmbedField
}

// Message is an outbound message.
type Message struct {
	Content  string
	Embed    *Embed
	Controls []Control
}

// PostedMessage is a message as seen in channel history.
type PostedMessage struct {
	ID          string
	ChannelID   string
	AuthorID    string
	HasControls bool
}

// Gateway is the provisioning boundary to the chat platform.
type Gateway interface {
	FindCategory(ctx context.Context, name string) (*Channel, error)
	CreateCategory(ctx context.Context, name string) (*Channel, error)
	FindChannel(ctx context.Context, name string, kind ChannelKind) (*Channel, error)
	ListChannels(ctx context.Context, kind ChannelKind) ([]Channel, error)
	CreateChannel(ctx context.Context, spec ChannelSpec) (*Channel, error)
	DeleteChannel(ctx context.Context, channelID string) error
	PostMessage(ctx context.Context, channelID string, msg Message) (*PostedMessage, error)
	ListRecentMessages(ctx context.Context, channelID string, limit int) ([]PostedMessage, error)
	FindRole(ctx context.Context, name string) (*Role, error)
	CreateRole(ctx context.Context, name string, perms []Permission) (*Role, error)
	AddMemberRole(ctx context.Context, userID, roleID string) error
	SelfID() string
}

// Responder delivers a private reply to whoever triggered an interaction.
type Responder interface {
	Respond(ctx context.Context, text string) error
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(ctx context.Context, text string) error

func (f ResponderFunc) Respond(ctx context.Context, text string) error {
	return f(ctx, text)
}

// MentionUser formats a member mention.
func MentionUser(userID string) string {
	return "<@" + userID + ">"
}

// MentionChannel formats a channel mention.
func MentionChannel(channelID string) string {
	return "<#" + channelID + ">"
}
