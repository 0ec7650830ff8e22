package config

import (
	"fmt"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Users = map[string]User{
		"alice": {Roles: []string{RoleModerator}, Channels: []string{"task-list:alice:*"}},
		"root":  {Roles: []string{RoleAdmin}},
	}
	return &cfg
}

func TestValidateDeep_Valid(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidate_EmptyRole(t *testing.T) {
	cfg := validConfig()
	cfg.Users["bob"] = User{Roles: []string{"  "}}

	err := cfg.Validate()

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 1)
	assert.Contains(t, fieldErrs[0].Field, `users["bob"].roles`)
}

func TestValidate_IdleExceedsOpen(t *testing.T) {
	cfg := validConfig()
	cfg.Database.MaxOpenConns = 2
	cfg.Database.MaxIdleConns = 5

	err := cfg.Validate()

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs[0].Field, "max_idle_conns")
}

func TestValidateDeep_InvalidChannelPattern(t *testing.T) {
	cfg := validConfig()
	cfg.Users["bob"] = User{Channels: []string{"task-list:["}}

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 1)
	assert.Contains(t, fieldErrs[0].Field, `users["bob"].channels[0]`)
	assert.Contains(t, fieldErrs[0].Err.Error(), "invalid pattern")
}

func TestValidateDeep_ConfigPathIsDirectory(t *testing.T) {
	cfg := validConfig()

	err := cfg.ValidateDeep(t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs[0].Field, "config_file")
}

func TestWarnings(t *testing.T) {
	cfg := validConfig()
	cfg.Users["idle"] = User{}
	cfg.Users["odd"] = User{Roles: []string{"auditor"}}

	warnings := cfg.Warnings()
	require.Len(t, warnings, 2)

	byItem := map[string]ValidationWarning{}
	for _, w := range warnings {
		byItem[w.Item] = w
	}
	assert.Contains(t, byItem["idle"].Message, "neither roles nor channel grants")
	assert.Contains(t, byItem["odd"].Message, fmt.Sprintf("role %q", "auditor"))
}
