// Package logging builds the zerolog logger shared across helmbridge.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/deixis/helmbridge/internal/config"
)

// New constructs a logger from the config log section. Output always goes
// to stderr: stdout belongs to the stdio MCP transport.
func New(cfg config.LogConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level)); err == nil {
			level = parsed
		}
	}

	var w io.Writer = os.Stderr
	if strings.ToLower(cfg.Format) != "json" {
		w = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
