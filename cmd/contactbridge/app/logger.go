package app

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/contactbridge/pkg/logging"
)

// NewLogger creates a configured logger. Level precedence:
//  1. -v/--verbose flag (debug)
//  2. -q/--quiet flag (warn)
//  3. LOG_LEVEL environment variable
//  4. Default (info)
func NewLogger(config *Config) zerolog.Logger {
	level := determineLogLevel(config)
	zerolog.SetGlobalLevel(level)

	var writer io.Writer = os.Stderr
	if config.LogFormat != "json" {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
			NoColor:    config.NoColor || os.Getenv("NO_COLOR") != "",
		}
	}

	logger := logging.New(writer).Level(level)
	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

func determineLogLevel(config *Config) zerolog.Level {
	if config.Verbose && config.Quiet {
		return zerolog.WarnLevel
	}
	if config.Verbose {
		return zerolog.DebugLevel
	}
	if config.Quiet {
		return zerolog.WarnLevel
	}

	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
