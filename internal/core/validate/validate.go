// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Username validates a principal name is non-empty after trimming whitespace.
func Username(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// ChannelPattern validates a channel grant pattern compiles as a glob.
func ChannelPattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("pattern is required")
	}
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid pattern %q", pattern)
	}
	return nil
}

// OutputFormat validates a CLI output format flag.
func OutputFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("format must be text or json, got %q", format)
	}
}
