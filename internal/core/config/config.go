// Package config handles configuration loading and validation for writegate.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Role names with built-in meaning to the policy rules.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// Config holds the application configuration.
type Config struct {
	Users    map[string]User `yaml:"users"`
	Database Database        `yaml:"database"`
	DataDir  string          `yaml:"-"` // set by caller, not from config file
}

// User declares a principal known to the local gateway: the roles it holds
// and the channel patterns it may read independently of ledger grants.
type User struct {
	Roles    []string `yaml:"roles"`
	Channels []string `yaml:"channels"` // glob patterns, e.g. "task-list:alice:*"
}

// Database holds SQLite tuning for the local ledger.
type Database struct {
	BusyTimeoutMS int `yaml:"busy_timeout_ms"`
	MaxOpenConns  int `yaml:"max_open_conns"`
	MaxIdleConns  int `yaml:"max_idle_conns"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Users: map[string]User{},
		Database: Database{
			BusyTimeoutMS: 5000,
			MaxOpenConns:  10,
			MaxIdleConns:  5,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	if cfg.Users == nil {
		cfg.Users = map[string]User{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// User returns the declared user entry for name. Unknown principals get a
// zero entry: no roles, no static channels.
func (c *Config) User(name string) User {
	return c.Users[name]
}
