// Package logging sets up the zerolog logger. The TUI owns the terminal, so logs go to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures New
type Options struct {
	Dir   string // Directory for dated log files
	File  string // Explicit log file path, overrides Dir
	Level string // debug, info, warn, error
}

// Logger bundles the zerolog logger with the file it writes to
type Logger struct {
	zerolog.Logger
	file io.Closer
	path string
}

// New opens the log file and returns a logger writing to it
func New(opts Options) (*Logger, error) {
	path := opts.File
	if path == "" {
		if opts.Dir == "" {
			return nil, fmt.Errorf("log directory is required")
		}
		path = filepath.Join(opts.Dir, fmt.Sprintf("companion_%s.log", time.Now().Format("2006-01-02")))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &Logger{
		Logger: NewWithWriter(file, opts.Level),
		file:   file,
		path:   path,
	}, nil
}

// NewWithWriter builds a logger on an arbitrary writer
func NewWithWriter(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel converts a level name, defaulting to info
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Path returns the log file path
func (l *Logger) Path() string {
	return l.path
}

// Close closes the log file
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Component returns a child logger tagged with a component name
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
