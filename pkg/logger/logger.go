package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns the process logger. dev gets debug level and a human readable
// console writer, everything else is JSON at info level.
func New(env string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	var out io.Writer = os.Stdout
	level := zerolog.InfoLevel
	if env == "dev" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
		level = zerolog.DebugLevel
	}
	return zerolog.New(out).With().Timestamp().Str("service", "civic-backend").Logger().Level(level)
}
