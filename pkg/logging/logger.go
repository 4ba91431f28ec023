package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// Level represents log severity
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Fields represents structured log fields
type Fields map[string]interface{}

// Format represents the log output format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Logger defines the interface for logging
// Implementations include stream, file and null loggers
type Logger interface {
	// Debug logs a debug message
	Debug(ctx context.Context, msg string, fields Fields)

	// Info logs an info message
	Info(ctx context.Context, msg string, fields Fields)

	// Warn logs a warning message
	Warn(ctx context.Context, msg string, fields Fields)

	// Error logs an error message
	Error(ctx context.Context, msg string, err error, fields Fields)

	// WithFields returns a logger with additional fields
	WithFields(fields Fields) Logger

	// Close flushes and closes the logger
	Close() error
}

// Options selects and configures a logger
type Options struct {
	Enabled bool
	Format  Format
	Level   Level
	// File is the log file path; empty writes to Writer
	File string
	// Writer receives entries when File is empty, defaulting to stderr
	Writer io.Writer
}

// New builds the logger described by opts
func New(opts Options) (Logger, error) {
	if !opts.Enabled {
		return NewNullLogger(), nil
	}
	if opts.File != "" {
		return NewFileLogger(FileLoggerConfig{
			Path:       opts.File,
			Format:     opts.Format,
			Level:      opts.Level,
			MaxSize:    10 * 1024 * 1024,
			MaxBackups: 3,
		})
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	return NewStreamLogger(w, opts.Format, opts.Level), nil
}

// mergeFields combines base and extra, extra winning on conflicts
func mergeFields(base, extra Fields) Fields {
	out := make(Fields, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// formatEntry renders one log line in the requested format
func formatEntry(format Format, level Level, msg string, err error, fields Fields) ([]byte, error) {
	if format == FormatJSON {
		entry := map[string]interface{}{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"level":     levelString(level),
			"message":   msg,
		}
		if err != nil {
			entry["error"] = err.Error()
		}
		for k, v := range fields {
			entry[k] = v
		}

		data, jsonErr := json.Marshal(entry)
		if jsonErr != nil {
			return nil, jsonErr
		}
		return append(data, '\n'), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", time.Now().UTC().Format("2006-01-02T15:04:05.000Z"), levelString(level), msg)
	if err != nil {
		fmt.Fprintf(&b, " error=%q", err.Error())
	}

	// Sorted keys keep text output stable
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// levelString returns the string representation of a log level
func levelString(level Level) string {
	switch level {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a log level string
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// LevelString returns level as string (exported version)
func LevelString(level Level) string {
	return levelString(level)
}
