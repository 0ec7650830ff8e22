package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", "/tmp/writegate-data")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/writegate-data", cfg.DataDir)
	assert.Empty(t, cfg.Users)
	assert.Equal(t, 5000, cfg.Database.BusyTimeoutMS)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml", "/tmp/data")
	require.NoError(t, err)
	assert.Empty(t, cfg.Users)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
users:
  alice:
    roles: [moderator]
    channels: ["task-list:alice:*"]
  root:
    roles: [admin]
database:
  busy_timeout_ms: 1000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, dir)
	require.NoError(t, err)

	alice := cfg.User("alice")
	assert.Equal(t, []string{"moderator"}, alice.Roles)
	assert.Equal(t, []string{"task-list:alice:*"}, alice.Channels)
	assert.Equal(t, []string{"admin"}, cfg.User("root").Roles)
	assert.Equal(t, 1000, cfg.Database.BusyTimeoutMS)

	unknown := cfg.User("nobody")
	assert.Empty(t, unknown.Roles)
	assert.Empty(t, unknown.Channels)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users: ["), 0o644))

	_, err := Load(path, dir)
	assert.Error(t, err)
}
