package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New creates a zerolog logger.
//
// level: debug, info, warn, error (unrecognized values mean info)
// format: "text" for a human-readable console writer, "json" for raw JSON lines
func New(level, format string, w io.Writer) zerolog.Logger {
	if strings.EqualFold(format, "text") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// Setup configures the global logger, writing to stderr so stdout stays free
// for reports.
func Setup(level, format string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	logger := New(level, format, os.Stderr)
	log.Logger = logger
	return logger
}

// ParseLevel converts a string log level to a zerolog.Level.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
