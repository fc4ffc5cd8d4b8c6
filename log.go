package hotspot

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLogLevel maps a config level name to a zerolog level. Unknown names
// fall back to info.
func ParseLogLevel(name string) zerolog.Level {
	switch strings.ToUpper(name) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "DISABLED":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger builds the mapper logger writing to w. In debug mode the output
// is a human-readable console format at debug level; otherwise JSON lines at
// the configured level. A nil writer yields a no-op logger.
func NewLogger(cfg *Config, w io.Writer) zerolog.Logger {
	if w == nil {
		return zerolog.Nop()
	}
	level := ParseLogLevel(cfg.LogLevel)
	if cfg.Debug {
		level = zerolog.DebugLevel
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Str("component", "hotspot").Logger()
}
