// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

// Command hotpreview runs the tooling server that running apps connect
// to, and drives it through the automation API.
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
	return root(os.Stdout).Execute(ctx, os.Args[1:])
}
