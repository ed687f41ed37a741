// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package connector

import "time"

// RetryStep applies Delay between attempts while the time elapsed since
// the loop started is below Below.
type RetryStep struct {
	Below time.Duration
	Delay time.Duration
}

// RetryPolicy maps elapsed time to retry spacing. Steps are checked in
// order; past the last step the loop gives up.
type RetryPolicy struct {
	Steps []RetryStep
}

// DefaultRetryPolicy retries every second for the first 5 seconds,
// every 2 seconds until 20 seconds, every 4 seconds until 60 seconds,
// and then gives up.
var DefaultRetryPolicy = RetryPolicy{Steps: []RetryStep{
	{Below: 5 * time.Second, Delay: 1 * time.Second},
	{Below: 20 * time.Second, Delay: 2 * time.Second},
	{Below: 60 * time.Second, Delay: 4 * time.Second},
}}

// Delay returns the wait before the next attempt, or false once elapsed
// has passed every step.
func (p RetryPolicy) Delay(elapsed time.Duration) (time.Duration, bool) {
	for _, step := range p.Steps {
		if elapsed < step.Below {
			return step.Delay, true
		}
	}
	return 0, false
}
