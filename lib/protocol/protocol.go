// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"context"
	"errors"
)

// DefaultPort is the well-known tooling port. Build tooling finds the
// tooling process by this number, so the listener never falls back to
// another port.
const DefaultPort = 54242

// ProtocolVersion is reported by tooling/getInfo.
const ProtocolVersion = 1

// DefaultAddress is the loopback listen address on DefaultPort.
const DefaultAddress = "127.0.0.1:54242"

// MaxSnapshotSize bounds the encoded image a previews/snapshot result
// may carry.
const MaxSnapshotSize = 64 << 20

// ErrSnapshotTooLarge is returned for a snapshot image over
// MaxSnapshotSize.
var ErrSnapshotTooLarge = errors.New("preview snapshot exceeds size limit")

// Methods served by the app process.
const (
	MethodGetAppInfo    = "app/getInfo"
	MethodGetComponent  = "components/get"
	MethodNavigate      = "previews/navigate"
	MethodGetSnapshot   = "previews/snapshot"
	MethodGetCommand    = "commands/get"
	MethodInvokeCommand = "commands/invoke"
)

// Methods served by the tooling process.
const (
	MethodRegisterApp       = "tooling/registerApp"
	MethodComponentsChanged = "tooling/componentsChanged"
	MethodGetToolingInfo    = "tooling/getInfo"
)

// Caller issues requests and notifications to the remote peer.
// *rpc.Conn implements it.
type Caller interface {
	Call(ctx context.Context, method string, params, result any) error
	Notify(ctx context.Context, method string, params any) error
}
