// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

// Package protocol defines the method surface spoken over [rpc.Conn]
// between an app process and the tooling process: the stable method
// names, their parameter and result types, typed client proxies, and
// handler registration for each side.
//
// Wire types carry json tags only. The CBOR codec falls back to json
// tags, so the same types serve the RPC wire and the automation HTTP
// API.
package protocol
