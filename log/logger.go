package log

import "log/slog"

// Logger is a basic logger interface. Fields have to be passed in pairs as "key", "value"
type Logger interface {
	Debug(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)

	// With returns a logger instance that adds the given fields to every logged message
	With(fields ...any) Logger
}

// NewSlogLogger wraps the given slog logger.
func NewSlogLogger(l *slog.Logger) Logger {
	return &slogLogger{l: l}
}

// NewDefaultLogger returns a logger backed by the default slog logger.
func NewDefaultLogger() Logger {
	return &slogLogger{l: slog.Default()}
}

type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Debug(msg string, fields ...any) {
	s.l.Debug(msg, fields...)
}

func (s *slogLogger) Warn(msg string, fields ...any) {
	s.l.Warn(msg, fields...)
}

func (s *slogLogger) Error(msg string, fields ...any) {
	s.l.Error(msg, fields...)
}

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: s.l.With(fields...)}
}

// NewNopLogger returns a logger that discards all messages.
func NewNopLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func (n nopLogger) With(...any) Logger { return n }
