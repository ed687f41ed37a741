// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry holds the immutable catalog an app exposes to the
// tooling process: its previewable UI components, the categories that
// group them, and its parameterless commands.
//
// A [Snapshot] is built once by a [Builder] and never mutated afterwards.
// Every update produces a fresh Snapshot that replaces the old one, so a
// reader holding a *Snapshot always sees a consistent view. Derived
// views ([Snapshot.CategorizedComponents] and the short names used for
// snapshot file naming) are computed lazily and cached on the instance
// they were computed from.
//
// [Merge] consolidates the snapshots of several simultaneous instances
// of the same app (one per target platform) into one.
package registry
