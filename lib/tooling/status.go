// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package tooling

import "context"

// StatusSink receives advisory progress messages such as "capturing 3
// of 12: Button/Default". Implementations must not block.
type StatusSink interface {
	Status(message string)
}

// StatusFunc adapts a function to StatusSink.
type StatusFunc func(message string)

func (f StatusFunc) Status(message string) { f(message) }

type discardStatus struct{}

func (discardStatus) Status(string) {}

// Foregrounder asks the operating system to bring an app instance's
// window to the front. Failures are logged and otherwise ignored.
type Foregrounder interface {
	BringToFront(ctx context.Context, session *Session) error
}
