// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for the retry and
// dispatch loops.
//
// The resilient connector decides its retry spacing from elapsed wall
// clock time, so its behavior over a full minute of failures has to be
// testable without waiting a minute. Production code receives Real();
// tests receive Fake() and drive time explicitly:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go connector.Run(ctx)      // constructed with Clock: c
//	c.WaitForTimers(1)         // the loop is now waiting for a retry
//	c.Advance(time.Second)     // fire it deterministically
//
// WaitForTimers closes the race between a goroutine registering a wait
// and the test advancing past it.
package clock
