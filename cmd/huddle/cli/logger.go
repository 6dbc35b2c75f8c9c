// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates the logger for CLI commands. format is
// "text", "json", or "auto"; auto picks text when stderr is a terminal
// and JSON when it is piped or redirected.
//
// Callers scope it with command context:
//
//	logger := cli.NewCommandLogger(os.Stderr, slog.LevelInfo, "auto").With(
//	    "command", "member/role",
//	    "workspace_id", workspaceID,
//	)
func NewCommandLogger(out io.Writer, level slog.Level, format string) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if format == "auto" || format == "" {
		format = "json"
		if file, ok := out.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
			format = "text"
		}
	}
	if format == "text" {
		return slog.New(slog.NewTextHandler(out, options))
	}
	return slog.New(slog.NewJSONHandler(out, options))
}
