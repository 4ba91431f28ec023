package logging

import "context"

// NullLogger drops every entry. New returns it when logging is disabled,
// and the snapshot coordinator falls back to it when given no logger.
type NullLogger struct{}

// NewNullLogger creates a logger that writes nothing
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (l *NullLogger) Debug(context.Context, string, Fields)        {}
func (l *NullLogger) Info(context.Context, string, Fields)         {}
func (l *NullLogger) Warn(context.Context, string, Fields)         {}
func (l *NullLogger) Error(context.Context, string, error, Fields) {}

// WithFields ignores the fields; there is nothing to attach them to
func (l *NullLogger) WithFields(Fields) Logger { return l }

func (l *NullLogger) Close() error { return nil }
