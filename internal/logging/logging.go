// Package logging configures the process wide zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds a logger writing to w. Development gets a human readable console
// writer, everything else gets JSON lines.
func New(w io.Writer, development bool, level string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if development {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// Setup installs the logger as the zerolog/log global and returns it.
func Setup(w io.Writer, development bool, level string) zerolog.Logger {
	logger := New(w, development, level)
	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger
	return logger
}
