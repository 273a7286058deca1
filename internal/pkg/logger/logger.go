package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds a zerolog logger from the configured level and format.
// Unknown levels fall back to info, unknown formats to JSON.
func New(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var out = os.Stderr
	logger := zerolog.New(out)
	if strings.EqualFold(format, "console") {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out})
	}

	return logger.Level(lvl).With().Timestamp().Logger()
}
