// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/hotpreview/hotpreview/lib/cli"
	"github.com/hotpreview/hotpreview/lib/version"
)

// root builds the command tree. Command output goes to stdout.
func root(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name: "hotpreview",
		Description: `HotPreview: live previews of UI components in running apps.

"hotpreview serve" accepts connections from apps and exposes them
through the automation API. The other commands talk to that API.`,
		Subcommands: []*cli.Command{
			serveCommand(),
			appsCommand(stdout),
			componentsCommand(stdout),
			commandsCommand(stdout),
			navigateCommand(),
			invokeCommand(),
			snapshotCommand(stdout),
			pinCommand(stdout),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, _ []string) error {
					_, err := fmt.Fprintf(stdout, "hotpreview %s\n", version.Full())
					return err
				},
			},
		},
	}
}
