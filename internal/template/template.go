// Package template loads the guild layout the bot provisions at startup.
package template

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/ticket-bot/internal/gateway"
)

// Role is a role the guild must have.
type Role struct {
	Name        string               `yaml:"name" json:"name"`
	Permissions []gateway.Permission `yaml:"permissions" json:"permissions"`
}

// Category is a channel category and the channels inside it.
type Category struct {
	Name          string   `yaml:"name" json:"name"`
	TextChannels  []string `yaml:"text_channels" json:"text_channels"`
	VoiceChannels []string `yaml:"voice_channels" json:"voice_channels"`
}

// Template is the server layout document. JSON documents are accepted as
// YAML.
type Template struct {
	Roles      []Role     `yaml:"roles" json:"roles"`
	Categories []Category `yaml:"categories" json:"categories"`
}

// DefaultRoles are provisioned when the document lists none.
func DefaultRoles(memberRole string) []Role {
	moderation := []gateway.Permission{
		gateway.PermissionKickMembers,
		gateway.PermissionBanMembers,
		gateway.PermissionMuteMembers,
		gateway.PermissionDeafenMembers,
		gateway.PermissionMoveMembers,
	}
	chat := []gateway.Permission{
		gateway.PermissionViewChannel,
		gateway.PermissionSendMessages,
		gateway.PermissionConnect,
	}
	return []Role{
		{Name: "Owner", Permissions: []gateway.Permission{gateway.PermissionAll}},
		{Name: "Developer", Permissions: moderation},
		{Name: "Technician", Permissions: moderation},
		{Name: "Moderator", Permissions: []gateway.Permission{gateway.PermissionAdministrator}},
		{Name: memberRole, Permissions: append(append([]gateway.Permission{}, chat...), gateway.PermissionCreateInvite)},
		{Name: "Guild Leader", Permissions: chat},
		{Name: "Guild Member", Permissions: chat},
	}
}

// Load reads the template at path. A missing file yields an empty layout
// with the default roles.
func Load(path, memberRole string) (*Template, error) {
	tmpl := &Template{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read template %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, tmpl); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", path, err)
		}
	}
	if len(tmpl.Roles) == 0 {
		tmpl.Roles = DefaultRoles(memberRole)
	}
	for i, c := range tmpl.Categories {
		if c.Name == "" {
			return nil, fmt.Errorf("template %s: category %d has no name", path, i)
		}
	}
	return tmpl, nil
}
