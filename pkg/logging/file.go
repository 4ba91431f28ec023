package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileLoggerConfig holds configuration for file logging
type FileLoggerConfig struct {
	// Path is the log file path
	Path string
	// Format is the output format (json or text)
	Format Format
	// Level is the minimum log level
	Level Level
	// MaxSize is the maximum size in bytes before rotation (0 = no rotation)
	MaxSize int64
	// MaxBackups is the maximum number of backup files to keep
	MaxBackups int
}

// fileSink is the open file shared by a logger and everything derived with WithFields
type fileSink struct {
	mu          sync.Mutex
	config      FileLoggerConfig
	file        *os.File
	currentSize int64
}

// FileLogger implements Logger interface with file output
type FileLogger struct {
	sink   *fileSink
	fields Fields
}

// NewFileLogger creates a new file logger
func NewFileLogger(config FileLoggerConfig) (*FileLogger, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(config.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	return &FileLogger{
		sink: &fileSink{
			config:      config,
			file:        file,
			currentSize: info.Size(),
		},
	}, nil
}

// Debug logs a debug message
func (l *FileLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log(DebugLevel, msg, nil, fields)
}

// Info logs an info message
func (l *FileLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.log(InfoLevel, msg, nil, fields)
}

// Warn logs a warning message
func (l *FileLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log(WarnLevel, msg, nil, fields)
}

// Error logs an error message
func (l *FileLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.log(ErrorLevel, msg, err, fields)
}

// WithFields returns a logger with additional fields
func (l *FileLogger) WithFields(fields Fields) Logger {
	return &FileLogger{
		sink:   l.sink,
		fields: mergeFields(l.fields, fields),
	}
}

// Close flushes and closes the logger
func (l *FileLogger) Close() error {
	s := l.sink
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (l *FileLogger) log(level Level, msg string, err error, fields Fields) {
	s := l.sink
	if level < s.config.Level {
		return
	}

	line, fmtErr := formatEntry(s.config.Format, level, msg, err, mergeFields(l.fields, fields))
	if fmtErr != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return
	}

	// Check rotation before writing
	if s.config.MaxSize > 0 && s.currentSize >= s.config.MaxSize {
		s.rotate()
		if s.file == nil {
			return
		}
	}

	n, _ := s.file.Write(line)
	s.currentSize += int64(n)
}

// rotate shifts backups up by one and reopens an empty log file
func (s *fileSink) rotate() {
	s.file.Close()
	s.file = nil

	path := s.config.Path
	for i := s.config.MaxBackups - 1; i >= 1; i-- {
		os.Rename(fmt.Sprintf("%s.%d", path, i), fmt.Sprintf("%s.%d", path, i+1))
	}
	os.Rename(path, path+".1")

	// Remove oldest if exceeds max backups
	if s.config.MaxBackups > 0 {
		os.Remove(fmt.Sprintf("%s.%d", path, s.config.MaxBackups+1))
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return
	}
	s.file = file
	s.currentSize = 0
}
