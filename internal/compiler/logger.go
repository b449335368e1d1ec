package compiler

import (
	"io"
	"log/slog"
	"os"
)

// Logger reports construction decisions when verbose output is enabled.
type Logger struct {
	enabled bool
	logger  *slog.Logger
}

// NewLogger creates a logger writing to stderr.
func NewLogger(enabled bool) *Logger {
	l := &Logger{enabled: enabled}
	l.SetOutput(os.Stderr)
	return l
}

// SetOutput sets the output writer for the logger.
func (l *Logger) SetOutput(w io.Writer) {
	l.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return attr
		},
	})).With("component", "lexgen")
}

// Log records msg with key/value pairs if verbose mode is enabled.
func (l *Logger) Log(msg string, args ...any) {
	if l.enabled {
		l.logger.Info(msg, args...)
	}
}

// Section marks the start of a build phase if verbose mode is enabled.
func (l *Logger) Section(name string) {
	if l.enabled {
		l.logger.Info("phase", "name", name)
	}
}

// Enabled returns whether the logger is enabled.
func (l *Logger) Enabled() bool {
	return l.enabled
}
