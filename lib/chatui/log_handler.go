// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package chatui

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/huddle-chat/huddle/lib/notify"
)

// LogHandler is a slog.Handler that shows log records on the viewer's
// notification line. Records below the configured level are dropped.
// Errors become error notifications and everything else becomes an
// info notification.
//
// Writing logs to stderr would corrupt the alt-screen display, so the
// viewer installs this handler (optionally fanned out to a file) as
// its only log destination.
type LogHandler struct {
	level    slog.Level
	notifier notify.Notifier
	attrs    []slog.Attr
	groups   []string
}

// NewLogHandler creates a handler that delivers records at or above
// level to notifier.
func NewLogHandler(level slog.Level, notifier notify.Notifier) *LogHandler {
	return &LogHandler{level: level, notifier: notifier}
}

// Enabled reports whether the handler is interested in records at the
// given level.
func (handler *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level
}

// Handle formats the record as "message (key=value, ...)" and
// notifies.
func (handler *LogHandler) Handle(_ context.Context, record slog.Record) error {
	prefix := ""
	if len(handler.groups) > 0 {
		prefix = strings.Join(handler.groups, ".") + "."
	}

	var parts []string
	for _, attr := range handler.attrs {
		parts = append(parts, fmt.Sprintf("%s=%s", attr.Key, attr.Value))
	}
	record.Attrs(func(attr slog.Attr) bool {
		parts = append(parts, fmt.Sprintf("%s%s=%s", prefix, attr.Key, attr.Value))
		return true
	})

	summary := record.Message
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}

	level := notify.Info
	if record.Level >= slog.LevelError {
		level = notify.Error
	}
	handler.notifier.Notify(level, summary)
	return nil
}

// WithAttrs returns a new handler with the given attributes appended.
func (handler *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandler{
		level:    handler.level,
		notifier: handler.notifier,
		attrs:    append(slices.Clone(handler.attrs), attrs...),
		groups:   slices.Clone(handler.groups),
	}
}

// WithGroup returns a new handler with the given group name appended.
func (handler *LogHandler) WithGroup(name string) slog.Handler {
	return &LogHandler{
		level:    handler.level,
		notifier: handler.notifier,
		attrs:    slices.Clone(handler.attrs),
		groups:   append(slices.Clone(handler.groups), name),
	}
}
