// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

// Package connector runs inside an app process and keeps it connected
// to the tooling process.
//
// A [Connector] dials the tooling address, serves the app-side methods,
// registers the app, and then waits for the connection to end. It then
// reconnects under a [RetryPolicy] measured from when [Connector.Run]
// started, not from the last failure: once the policy's give-up
// threshold has passed, Run returns and no further attempts are made,
// even if the app had been connected for most of that time. Callers
// that want to reconnect later call Run again.
package connector
