// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

// Command hotpreview-demoapp is a stand-in app process. It serves a
// component catalog read from a YAML file, renders placeholder images
// for snapshots, and keeps a connection to the tooling process. SIGHUP
// reloads the catalog and tells the tooling about the change.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hotpreview/hotpreview/lib/cli"
)

func main() {
	if err := run(); err != nil {
		code, printable := cli.ExitCode(err)
		if printable {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(code)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return command().Execute(ctx, os.Args[1:])
}
