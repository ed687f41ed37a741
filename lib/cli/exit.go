// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
)

// ExitError makes main exit with Code without printing anything more.
// The command is expected to have written its own output.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode maps a command error to a process exit status: 0 for nil, the
// carried code for an [ExitError], 1 otherwise. The second result reports
// whether the error should be printed.
func ExitCode(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code, false
	}
	return 1, true
}
