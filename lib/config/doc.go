// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the HotPreview
// tooling process.
//
// Configuration is loaded from a single file named either by the
// HOTPREVIEW_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no ~/.config discovery and no automatic file
// search. Commands that run without a config file start from [Default].
//
// Variable expansion is performed on path fields after loading: ${HOME}
// and ${VAR:-default} patterns are expanded. No other environment
// variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Listen, Automation, Snapshots,
//     Navigation, and Log sections
//   - [Default] -- returns a Config with the stock defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other HotPreview packages.
package config
