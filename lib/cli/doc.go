// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework shared by the hotpreview
// binaries.
//
// The central type is [Command], a named subcommand with optional nested
// [Command.Subcommands], a [pflag.FlagSet] factory, and a Run function.
// Commands are assembled into a tree in each binary's main.go and
// dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and help output with examples.
//
// Unknown subcommands and flags get a "did you mean" suggestion when an
// edit distance of at most 3 separates them from a known name.
//
// Output helpers: [NewCommandLogger] picks a text or JSON slog handler
// depending on whether stderr is a terminal, [WriteJSON] emits indented
// JSON, and [Table] renders aligned, lipgloss-styled columns.
package cli
