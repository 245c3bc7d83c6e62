// Package logger configures the process-wide zerolog root logger.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// Setup returns the root logger. In dev mode it is human-readable
// console output at debug level; otherwise JSON at info level.
func Setup(dev bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	return logger
}
