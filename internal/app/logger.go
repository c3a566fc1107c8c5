package app

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Log output formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Defaults applied by NewConfig when a field is left empty.
const (
	DefaultLogFormat = LogFormatText
	DefaultLogLevel  = "info"
)

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", level)
}

func checkLogFormat(format string) error {
	switch strings.ToLower(format) {
	case LogFormatText, LogFormatJSON:
		return nil
	}
	return fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", format)
}

// newLogger builds the logger described by cfg, writing to outW. It does not
// set the global logger, so every App gets an isolated instance.
func newLogger(cfg *Config, outW io.Writer) (*slog.Logger, error) {
	level, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if err := checkLogFormat(cfg.LogFormat); err != nil {
		return nil, err
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.LogFormat) == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(outW, handlerOpts)), nil
	}
	return slog.New(slog.NewTextHandler(outW, handlerOpts)), nil
}
