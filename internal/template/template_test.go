package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-bot/internal/gateway"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	tmpl, err := Load(filepath.Join(t.TempDir(), "absent.json"), "Member")
	require.NoError(t, err)
	assert.Empty(t, tmpl.Categories)
	require.Len(t, tmpl.Roles, 7)
	assert.Equal(t, "Member", tmpl.Roles[4].Name)
	assert.Contains(t, tmpl.Roles[4].Permissions, gateway.PermissionCreateInvite)
}

func TestLoadJSONDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.json")
	doc := `{"categories": [
  {"name": "INFO", "text_channels": ["rules", "news"], "voice_channels": []},
  {"name": "VOICE", "voice_channels": ["Lobby"]}
]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	tmpl, err := Load(path, "Member")
	require.NoError(t, err)
	require.Len(t, tmpl.Categories, 2)
	assert.Equal(t, []string{"rules", "news"}, tmpl.Categories[0].TextChannels)
	assert.Equal(t, []string{"Lobby"}, tmpl.Categories[1].VoiceChannels)
	assert.NotEmpty(t, tmpl.Roles)
}

func TestLoadYAMLWithRoles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	doc := `
roles:
  - name: Staff
    permissions: [kick_members, ban_members]
categories:
  - name: SUPPORT
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	tmpl, err := Load(path, "Member")
	require.NoError(t, err)
	require.Len(t, tmpl.Roles, 1)
	assert.Equal(t, []gateway.Permission{gateway.PermissionKickMembers, gateway.PermissionBanMembers}, tmpl.Roles[0].Permissions)
}

func TestLoadRejectsInvalidDocuments(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("categories: [\n"), 0o644))
	_, err := Load(bad, "Member")
	assert.Error(t, err)

	unnamed := filepath.Join(dir, "unnamed.json")
	require.NoError(t, os.WriteFile(unnamed, []byte(`{"categories":[{"text_channels":["x"]}]}`), 0o644))
	_, err = Load(unnamed, "Member")
	assert.ErrorContains(t, err, "no name")
}
