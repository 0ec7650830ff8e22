package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/writegate/internal/core/validate"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate performs structural validation: user names and role values must
// be non-empty. Called on every Load.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	for name, user := range c.Users {
		if strings.TrimSpace(name) == "" {
			errs = errs.Append("users", fmt.Errorf("user name is empty"))
		}
		for i, role := range user.Roles {
			if strings.TrimSpace(role) == "" {
				errs = errs.Append(fmt.Sprintf("users[%q].roles[%d]", name, i), fmt.Errorf("role is empty"))
			}
		}
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = errs.Append("database.max_idle_conns", fmt.Errorf("must not exceed max_open_conns"))
	}

	return errs.ToError()
}

// ValidateDeep performs comprehensive validation including channel pattern
// syntax and config file accessibility. The configPath argument specifies
// the config file location to validate (empty string skips the file check).
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		c.validateChannelPatterns(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	for name, user := range c.Users {
		if len(user.Roles) == 0 && len(user.Channels) == 0 {
			warnings = append(warnings, ValidationWarning{
				Category: "Users",
				Item:     name,
				Message:  "user has neither roles nor channel grants",
			})
		}
		for _, role := range user.Roles {
			if role != RoleAdmin && role != RoleModerator {
				warnings = append(warnings, ValidationWarning{
					Category: "Users",
					Item:     name,
					Message:  fmt.Sprintf("role %q has no built-in meaning to the policy", role),
				})
			}
		}
	}

	return warnings
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}
	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func (c *Config) validateChannelPatterns() error {
	var errs criterio.FieldErrorsBuilder

	for name, user := range c.Users {
		for i, pattern := range user.Channels {
			if err := validate.ChannelPattern(pattern); err != nil {
				errs = errs.Append(fmt.Sprintf("users[%q].channels[%d]", name, i), err)
			}
		}
	}

	return errs.ToError()
}
