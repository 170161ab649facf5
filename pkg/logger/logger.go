// Package logger builds the zerolog loggers used across the simulation
// service. Every component receives a sub-scoped logger through its
// constructor (log.With().Str("module", ...)); the package-level zerolog
// global is set once at startup for third-party code that logs through it.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Pretty bool   // Console output for development runs
}

// New creates the root structured logger. Unknown level strings fall back
// to info.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stdout
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(output).
		With().
		Timestamp().
		Logger()
}

// SetGlobalLogger replaces the zerolog package-level logger with the
// service root logger
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}
