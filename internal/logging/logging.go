// Package logging wraps slog with subsystem names and printf-style helpers.
//
// A Logger is always passed explicitly to the component that uses it. There
// is no package level default, so the debug switch chosen on the command
// line reaches every layer as a parameter.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Logger logs on behalf of one subsystem.
type Logger struct {
	slog      *slog.Logger
	subsystem string
}

// New returns a root logger writing text records to output. When debug is
// set the DEBUG level is enabled, otherwise INFO and above are written.
func New(output io.Writer, debug bool) *Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return NewWithLevel(output, level)
}

// NewWithLevel returns a root logger filtering below level.
func NewWithLevel(output io.Writer, level slog.Level) *Logger {
	handler := slog.NewTextHandler(output, &slog.HandlerOptions{Level: level})
	return &Logger{slog: slog.New(handler)}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewWithLevel(io.Discard, slog.LevelError)
}

// Named returns a logger tagging every record with subsystem.
func (l *Logger) Named(subsystem string) *Logger {
	return &Logger{slog: l.slog, subsystem: subsystem}
}

// Enabled reports whether records at level are written.
func (l *Logger) Enabled(level slog.Level) bool {
	return l.slog.Enabled(context.Background(), level)
}

func (l *Logger) log(level slog.Level, err error, messageFmt string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}

	msg := messageFmt
	if len(args) > 0 {
		msg = fmt.Sprintf(messageFmt, args...)
	}

	var attrs []slog.Attr
	if l.subsystem != "" {
		attrs = append(attrs, slog.String("subsystem", l.subsystem))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.slog.LogAttrs(context.Background(), level, msg, attrs...)
}

// Debug logs a debug message.
func (l *Logger) Debug(messageFmt string, args ...interface{}) {
	l.log(slog.LevelDebug, nil, messageFmt, args...)
}

// Info logs an informational message.
func (l *Logger) Info(messageFmt string, args ...interface{}) {
	l.log(slog.LevelInfo, nil, messageFmt, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(messageFmt string, args ...interface{}) {
	l.log(slog.LevelWarn, nil, messageFmt, args...)
}

// Error logs an error message.
func (l *Logger) Error(err error, messageFmt string, args ...interface{}) {
	l.log(slog.LevelError, err, messageFmt, args...)
}
