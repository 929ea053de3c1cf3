package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/gateway"
	"github.com/spec-kit/ticket-bot/internal/gateway/gatewaytest"
	"github.com/spec-kit/ticket-bot/internal/template"
)

func testTemplate() *template.Template {
	return &template.Template{
		Roles: template.DefaultRoles("Member"),
		Categories: []template.Category{
			{Name: "INFO", TextChannels: []string{"rules", "announcements"}},
			{Name: "VOICE", VoiceChannels: []string{"Lobby"}},
		},
	}
}

func TestProvisionIsIdempotent(t *testing.T) {
	gw := gatewaytest.New()
	gw.AddRole("Owner")
	gw.AddChannel("rules", gateway.ChannelKindText)
	bootstrap := NewBootstrapService(gw, zap.NewNop(), "Member")
	ctx := context.Background()

	require.NoError(t, bootstrap.Provision(ctx, testTemplate()))
	require.NoError(t, bootstrap.Provision(ctx, testTemplate()))

	for _, role := range template.DefaultRoles("Member") {
		_, err := gw.FindRole(ctx, role.Name)
		assert.NoError(t, err, role.Name)
	}
	assert.Equal(t, 1, gw.ChannelsNamed("INFO", gateway.ChannelKindCategory))
	assert.Equal(t, 1, gw.ChannelsNamed("VOICE", gateway.ChannelKindCategory))
	assert.Equal(t, 1, gw.ChannelsNamed("rules", gateway.ChannelKindText))
	assert.Equal(t, 1, gw.ChannelsNamed("announcements", gateway.ChannelKindText))
	assert.Equal(t, 1, gw.ChannelsNamed("Lobby", gateway.ChannelKindVoice))

	info, err := gw.FindCategory(ctx, "INFO")
	require.NoError(t, err)
	announcements, err := gw.FindChannel(ctx, "announcements", gateway.ChannelKindText)
	require.NoError(t, err)
	assert.Equal(t, info.ID, announcements.ParentID)
}

func TestProvisionStopsAtPlatformError(t *testing.T) {
	gw := gatewaytest.New()
	gw.SetError(func(f *gatewaytest.Fake) { f.CreateCategoryErr = errors.New("missing permissions") })

	err := NewBootstrapService(gw, zap.NewNop(), "Member").Provision(context.Background(), testTemplate())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INFO")
	assert.Equal(t, 0, gw.ChannelsNamed("rules", gateway.ChannelKindText))
}

func TestOnMemberJoinedGrantsDefaultRole(t *testing.T) {
	gw := gatewaytest.New()
	member := gw.AddRole("Member")

	NewBootstrapService(gw, zap.NewNop(), "Member").OnMemberJoined(context.Background(), "newbie")

	assert.Equal(t, []gatewaytest.Grant{{UserID: "newbie", RoleID: member.ID}}, gw.Grants())
}

func TestOnMemberJoinedWithoutRoleOnlyLogs(t *testing.T) {
	gw := gatewaytest.New()
	bootstrap := NewBootstrapService(gw, zap.NewNop(), "Member")

	assert.NotPanics(t, func() { bootstrap.OnMemberJoined(context.Background(), "newbie") })
	assert.Empty(t, gw.Grants())

	gw.AddRole("Member")
	gw.SetError(func(f *gatewaytest.Fake) { f.AddMemberRoleErr = errors.New("hierarchy") })
	assert.NotPanics(t, func() { bootstrap.OnMemberJoined(context.Background(), "newbie") })
	assert.Empty(t, gw.Grants())
}
