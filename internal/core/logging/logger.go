package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component derives a logger for one subsystem of the write pipeline
// (policy, gateway, ...), tagged under the "cmp" key so a single log file
// stays filterable per stage.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}
