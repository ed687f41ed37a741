// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Call and Notify once the connection has
// ended, and by calls still waiting for a response when it ends.
var ErrClosed = errors.New("rpc connection closed")

// Error codes carried in failed responses.
const (
	CodeMethodNotFound = "method_not_found"
	CodeInvalidParams  = "invalid_params"
	CodeNotFound       = "not_found"
	CodeInternal       = "internal"
)

// Error is a failure reported by the remote peer. Handlers may return
// an *Error to choose the code; any other error is sent as
// CodeInternal with its message.
type Error struct {
	Code    string `cbor:"code"`
	Message string `cbor:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf builds an *Error with a formatted message.
func Errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// toError converts a handler error to its wire form.
func toError(err error) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	return &Error{Code: CodeInternal, Message: err.Error()}
}

// IsCode reports whether err is a remote *Error with the given code.
func IsCode(err error, code string) bool {
	var rpcErr *Error
	return errors.As(err, &rpcErr) && rpcErr.Code == code
}
