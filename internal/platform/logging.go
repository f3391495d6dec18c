package platform

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOptions configures NewLogger.
type LogOptions struct {
	// Verbose forces the debug level.
	Verbose bool
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string
	// File, if set, receives JSON records in a rotating log file.
	File string
}

// NewLogger builds the process logger: human readable records on w and, when a
// file is configured, JSON records in a size-rotated file. The returned closer
// releases the file.
func NewLogger(w io.Writer, opts LogOptions) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	console := slog.NewTextHandler(w, handlerOpts)
	if opts.File == "" {
		return slog.New(console), nopCloser{}, nil
	}

	file := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
	handler := slog.NewMultiHandler(console, slog.NewJSONHandler(file, handlerOpts))
	return slog.New(handler), file, nil
}

// ParseLevel maps a level name to a slog.Level. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
