// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"sync/atomic"
)

var uniqueCounter atomic.Uint64

// UniqueID returns a string of the form "prefix-N" where N is a
// monotonically increasing integer. Use it for project names, platform
// names and command names that must not collide between tests running
// in parallel against a shared directory.
//
//	project := testutil.UniqueID("project")   // "project-1", "project-2", ...
//	session := testutil.UniqueID("session")   // "session-3", ...
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, uniqueCounter.Add(1))
}
