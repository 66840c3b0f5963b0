// Package logging configures the process-wide zerolog logger: a
// package-level Logger other packages augment with fields rather than
// constructing their own.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is the process-wide base logger. init configures it; other
// packages derive scoped loggers from it via .With().
var Logger zerolog.Logger

func init() {
	Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}).
		With().Timestamp().Logger()
}

// SetLevel parses level (e.g. "debug", "info", "warn") and applies it
// to Logger. An unrecognized level falls back to info.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	Logger = Logger.Level(lvl)
}
