// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive], [RequireReceiveN], and [RequireClosed] bound every
// channel wait in a test with a real-time deadline. Tests that
// exercise timing use lib/clock.Fake; the real-clock timeouts here only
// keep a broken test from hanging the suite.
//
// [ProjectPath] returns a unique project path under a test temp
// directory, and [UniqueID] generates monotonically increasing
// identifiers for test disambiguation.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no internal dependencies.
package testutil
