// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding configuration shared by the
// preview protocol.
//
// Every value that crosses the tooling/app connection is CBOR: the RPC
// envelopes in lib/rpc and the payload types in lib/protocol. CBOR is
// self-delimiting, so a connection carries a plain sequence of values
// with no additional framing.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. Same
// logical data always produces identical bytes, which keeps protocol
// tests byte-comparable.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (connections):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// # Struct Tag Rules
//
// Protocol payload types use `json` tags: they are also served as JSON by
// the automation API, and fxamacker/cbor reads `json` tags when `cbor`
// tags are absent. Types that only ever travel as CBOR (the RPC envelope)
// use `cbor` tags. Never put both tags on the same field.
package codec
