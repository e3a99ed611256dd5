package app

import (
	"github.com/rs/zerolog"

	"github.com/beastforge/beastforge/pkg/logging"
)

// NewLogger creates a logger based on the configuration.
// Level precedence (highest to lowest): explicit log_level, verbose flag,
// quiet flag, default info.
func NewLogger(config *Config) zerolog.Logger {
	level := resolveLogLevel(config)

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:   level,
		Format:  config.LogFormat,
		Output:  config.LogOutput,
		NoColor: config.NoColor,
	})

	logging.SetDefault(logger)
	return logger
}

// resolveLogLevel determines the effective log level from the configuration.
func resolveLogLevel(config *Config) string {
	switch {
	case config.LogLevel != "":
		return config.LogLevel
	case config.Verbose:
		return "debug"
	case config.Quiet:
		return "error"
	default:
		return "info"
	}
}
