// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

// Package logging provides the ambient, control-path logger. Nothing on
// the per-packet hot path may call into this package: workers only ever
// touch their own StatsBlock counters, and emit a human-readable line
// through here only from action_print, at a rate the operator controls.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog with the worker/port/component attributes this
// codebase threads through every call site instead of relying on
// package-level loggers.
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
}

// New builds a Logger writing to w (os.Stderr if nil) at the given level,
// optionally fanning out to a syslog sink.
func New(w io.Writer, level slog.Level, syslog io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	lv := &slog.LevelVar{}
	lv.Set(level)

	var out io.Writer = w
	if syslog != nil {
		out = io.MultiWriter(w, syslog)
	}

	h := slog.NewTextHandler(out, &slog.HandlerOptions{Level: lv})
	return &Logger{Logger: slog.New(h), level: lv}
}

// SetLevel adjusts verbosity at runtime, e.g. from an admin command.
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// With returns a derived Logger carrying the given attributes on every
// subsequent record, used to scope a logger to one worker or port.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), level: l.level}
}

// Background returns a no-op-cancellable context for call sites that need
// to hand one to slog but have no request-scoped context of their own.
func Background() context.Context {
	return context.Background()
}
