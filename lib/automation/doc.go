// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

// Package automation exposes the tooling process over HTTP for editors,
// scripts, and the hotpreview CLI.
//
// [NewHandler] builds a chi router over a [tooling.Directory]:
//
//	GET  /apps                     apps with their sessions and pin state
//	GET  /apps/components?project= categorized components with short names
//	GET  /apps/commands?project=   commands
//	POST /apps/navigate            show a preview in every serving session
//	POST /apps/commands/invoke     run a command on every session
//	POST /apps/snapshots           capture preview images
//	POST /apps/pin                 pin or unpin an app
//	GET  /status                   websocket stream of status messages
//	GET  /tooling                  tooling info advertised to apps
//	GET  /metrics                  Prometheus exposition
//
// Errors are JSON objects {"error", "code"}. Unknown apps, components,
// previews, categories, and commands are 404; malformed requests are
// 400; an app with no live sessions is 409; fan-out failures are 502
// with the joined per-session message.
//
// [Server] binds the handler to a TCP address with graceful shutdown.
// [Client] is the Go client used by the CLI.
package automation
