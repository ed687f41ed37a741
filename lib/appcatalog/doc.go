// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

// Package appcatalog hosts an app's component catalog for the tooling
// process.
//
// A [Host] implements [protocol.AppService] on top of a [Source], which
// supplies the current registry snapshot, plus the app's own navigation,
// rendering, and command hooks. [Catalog] is a Source whose snapshot can
// be replaced at runtime; [LoadFile] reads a YAML catalog into a
// snapshot.
package appcatalog
