// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates the process logger. When stderr is a terminal
// it uses slog.TextHandler; when stderr is piped or redirected it uses
// slog.JSONHandler so output stays machine-parseable.
//
// Callers scope the logger with command context via With():
//
//	logger := cli.NewCommandLogger(slog.LevelInfo).With("command", "serve")
func NewCommandLogger(level slog.Level) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}
