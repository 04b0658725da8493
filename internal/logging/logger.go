package logging

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// NewLogger returns a timestamped zerolog logger writing to w. Unknown or empty
// levels fall back to info.
func NewLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// NewConsoleLogger is NewLogger with human-readable output for interactive commands.
func NewConsoleLogger(w io.Writer, level string) zerolog.Logger {
	return NewLogger(zerolog.ConsoleWriter{Out: w, NoColor: true}, level)
}
