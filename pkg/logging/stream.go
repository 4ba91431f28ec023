package logging

import (
	"context"
	"io"
	"sync"
)

// StreamLogger writes entries to any io.Writer, typically stderr
type StreamLogger struct {
	w      io.Writer
	format Format
	level  Level
	fields Fields
	mu     *sync.Mutex
}

// NewStreamLogger creates a logger writing to w
func NewStreamLogger(w io.Writer, format Format, level Level) *StreamLogger {
	return &StreamLogger{
		w:      w,
		format: format,
		level:  level,
		mu:     &sync.Mutex{},
	}
}

// Debug logs a debug message
func (l *StreamLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log(DebugLevel, msg, nil, fields)
}

// Info logs an info message
func (l *StreamLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.log(InfoLevel, msg, nil, fields)
}

// Warn logs a warning message
func (l *StreamLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log(WarnLevel, msg, nil, fields)
}

// Error logs an error message
func (l *StreamLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.log(ErrorLevel, msg, err, fields)
}

// WithFields returns a logger sharing the writer with additional fields
func (l *StreamLogger) WithFields(fields Fields) Logger {
	return &StreamLogger{
		w:      l.w,
		format: l.format,
		level:  l.level,
		fields: mergeFields(l.fields, fields),
		mu:     l.mu,
	}
}

// Close is a no-op; the writer belongs to the caller
func (l *StreamLogger) Close() error {
	return nil
}

func (l *StreamLogger) log(level Level, msg string, err error, fields Fields) {
	if level < l.level {
		return
	}
	line, fmtErr := formatEntry(l.format, level, msg, err, mergeFields(l.fields, fields))
	if fmtErr != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(line)
}
