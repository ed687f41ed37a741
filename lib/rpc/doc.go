// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

// Package rpc implements the bidirectional request/response and
// notification protocol spoken between an app process and the tooling
// process.
//
// Both peers are symmetric: each side registers handlers for the
// methods it serves and issues calls for the methods the other side
// serves, over the same byte stream. Messages are CBOR envelopes
// written back to back with no extra framing:
//
//	{kind: "request",      id: 7, method: "previews/snapshot", params: ...}
//	{kind: "response",     id: 7, result: ...}
//	{kind: "response",     id: 8, error: {code: "not_found", message: ...}}
//	{kind: "notification", method: "tooling/componentsChanged"}
//
// Request IDs are allocated independently by each side and only match
// responses travelling in the opposite direction.
//
// A [Conn] owns one stream. [Conn.Serve] runs the read loop; every
// inbound request or notification is handled on its own goroutine so a
// slow handler never blocks responses to outstanding calls.
package rpc
