// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

// Package tooling is the tooling-side connection registry and dispatch
// engine.
//
// A [Server] accepts app connections on the well-known port. Each
// connection becomes a [Session], which registers itself with the
// [Directory] under the app's project path. The Directory groups every
// session of one project into an [App], which consolidates the
// sessions' registry snapshots into one and fans out navigation,
// command, and snapshot-capture requests to the sessions that can serve
// them.
//
// Lock order is Directory, then App. No lock is held across a remote
// call. Published snapshots are swapped atomically and never mutated,
// so readers never lock.
package tooling
