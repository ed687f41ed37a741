// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"time"
)

// Fataler is the subset of testing.TB the helpers need.
type Fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

// RequireReceive returns the next value from ch, failing the test if
// none arrives within timeout or ch is closed first.
//
//	session := testutil.RequireReceive(t, registered, 5*time.Second, "registration")
func RequireReceive[T any](t Fataler, ch <-chan T, timeout time.Duration, msgAndArgs ...any) T {
	t.Helper()
	values := RequireReceiveN(t, ch, 1, timeout, msgAndArgs...)
	return values[0]
}

// RequireReceiveN collects n values from ch. The timeout covers all of
// them, so a sender that stalls midway fails the test.
//
//	messages := testutil.RequireReceiveN(t, updates, 3, 5*time.Second, "capture progress")
func RequireReceiveN[T any](t Fataler, ch <-chan T, n int, timeout time.Duration, msgAndArgs ...any) []T {
	t.Helper()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	values := make([]T, 0, n)
	for len(values) < n {
		select {
		case v, ok := <-ch:
			if !ok {
				t.Fatalf("channel closed after %d of %d values: %s", len(values), n, describe(msgAndArgs))
			}
			values = append(values, v)
		case <-deadline.C:
			t.Fatalf("timed out after %v with %d of %d values: %s", timeout, len(values), n, describe(msgAndArgs))
		}
	}
	return values
}

// RequireClosed waits for ch to be closed (or to deliver a value).
// Readiness and done channels signal by closing.
//
//	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "server ready")
func RequireClosed(t Fataler, ch <-chan struct{}, timeout time.Duration, msgAndArgs ...any) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatalf("timed out after %v waiting for channel close: %s", timeout, describe(msgAndArgs))
	}
}

// describe renders the optional trailing message: nothing, a plain
// value, or a format string with arguments.
func describe(msgAndArgs []any) string {
	switch {
	case len(msgAndArgs) == 0:
		return "(no message)"
	case len(msgAndArgs) == 1:
		return fmt.Sprint(msgAndArgs[0])
	}
	if format, ok := msgAndArgs[0].(string); ok {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return fmt.Sprint(msgAndArgs...)
}
