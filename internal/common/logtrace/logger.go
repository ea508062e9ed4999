// Package logtrace configures the process-wide zerolog logger.
// Logs always go to stderr; stdout is reserved for the MCP stdio stream.
package logtrace

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger initializes the global logger at the given level. When console
// is set, records are rendered for humans instead of as JSON.
func InitLogger(level string, console bool) {
	initLogger(os.Stderr, level, console)
}

func initLogger(w io.Writer, level string, console bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(ParseLevel(level))
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	// log.Ctx on a bare context falls back to the global logger.
	zerolog.DefaultContextLogger = &log.Logger
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return l
}
