// Package logging builds the zerolog logger shared by the client packages.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level picks the zerolog level: an explicit level wins, otherwise DEV logs debug.
func Level(level, env string) zerolog.Level {
	if level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
			return parsed
		}
	}
	if strings.EqualFold(env, "DEV") {
		return zerolog.DebugLevel
	}
	return zerolog.WarnLevel
}

// New returns a console logger writing to w (stderr when nil) and installs it as the
// global zerolog logger.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
	log.Logger = logger
	return logger
}
