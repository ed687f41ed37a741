// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package tooling

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every *NotFoundError with errors.Is.
var ErrNotFound = errors.New("not found")

// ErrNoSessions is returned when an operation needs at least one live
// session and the app has none.
var ErrNoSessions = errors.New("no live sessions")

// NotFoundError reports an unknown app, component, preview, category,
// or command. Kind names which.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// Is makes errors.Is(err, ErrNotFound) true for any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
