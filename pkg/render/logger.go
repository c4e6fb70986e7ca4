package render

import "github.com/sirupsen/logrus"

// Logger receives diagnostics for recoverable conditions: lax-mode lookup
// misses, helper misses, and middleware failures. Fatal pipeline errors are
// returned to the caller, not logged here.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NewLogger returns the default logrus-backed logger.
func NewLogger() Logger {
	return logrus.StandardLogger()
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// NopLogger discards all diagnostics.
func NopLogger() Logger {
	return nopLogger{}
}
