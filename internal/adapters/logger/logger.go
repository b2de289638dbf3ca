// Package logger implements a logging adapter using log/slog.
package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"

	"go.trai.ch/twine/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Logger = (*Logger)(nil)

// Logger implements ports.Logger using log/slog.
type Logger struct {
	mu     sync.RWMutex
	logger *slog.Logger
	level  slog.Level
}

// New creates a new Logger writing human-readable records to stderr.
func New() *Logger {
	return NewWithOutput(os.Stderr, slog.LevelInfo)
}

// NewWithOutput creates a new Logger writing to w at the given minimum level.
func NewWithOutput(w io.Writer, level slog.Level) *Logger {
	return &Logger{
		logger: newSlogger(w, level),
		level:  level,
	}
}

func newSlogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetOutput updates the logger's output destination.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger = newSlogger(w, l.level)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs an error. Metadata attached with zerr.With anywhere in the
// chain is emitted as attributes.
func (l *Logger) Error(err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Error("operation failed", append([]any{"error", err.Error()}, errorAttrs(err)...)...)
}

func errorAttrs(err error) []any {
	meta := make(map[string]any)
	for e := err; e != nil; e = errors.Unwrap(e) {
		zErr, ok := e.(*zerr.Error)
		if !ok {
			continue
		}
		for k, v := range zErr.Metadata() {
			if _, seen := meta[k]; !seen {
				meta[k] = v
			}
		}
	}

	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	attrs := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		attrs = append(attrs, k, meta[k])
	}
	return attrs
}
