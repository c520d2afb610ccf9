// SPDX-License-Identifier: GPL-3.0-or-later

package symtrace

import (
	"log/slog"
	"time"
)

// SLogger abstracts the [*slog.Logger] behavior.
//
// By using an abstraction we allow for unit testing and alternative implementations.
//
// This package uses two log levels:
//   - Info for trace events (every call through a traced slot and every
//     forwarded symbol query while tracing is enabled)
//   - Debug for lifecycle events (install, uninstall, toggle changes)
//
// The [*slog.Logger] type satisfies this interface.
type SLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

// DefaultSLogger returns the default [SLogger] to use.
//
// The default is a no-op logger that discards all output. This follows the
// library convention of not writing to stdout/stderr unless explicitly configured.
//
// Use a custom [*slog.Logger] for emitting logs.
func DefaultSLogger() SLogger {
	return discardSLogger{}
}

// discardSLogger is a no-op [SLogger] that discards all log messages.
type discardSLogger struct{}

var _ SLogger = discardSLogger{}

// Debug implements [SLogger].
func (discardSLogger) Debug(msg string, args ...any) {
	// nothing
}

// Info implements [SLogger].
func (discardSLogger) Info(msg string, args ...any) {
	// nothing
}

// moduleAttrs returns the attributes shared by all events about m.
func moduleAttrs(m *Module, t time.Time, extra ...any) []any {
	args := make([]any, 0, len(extra)+3)
	args = append(args,
		slog.String("module", m.name),
		slog.String("moduleID", m.id.String()),
	)
	args = append(args, extra...)
	return append(args, slog.Time("t", t))
}
