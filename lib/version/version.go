// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build version information for the hotpreview
// binaries.
//
// Values are injected at build time via -ldflags, for example:
//
//	go build -ldflags "-X github.com/hotpreview/hotpreview/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// When GitCommit is not injected, the VCS stamp recorded by the Go
// toolchain is used instead.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version, set for releases.
	Version = "0.1.0-dev"
)

// Info returns "0.1.0-dev (abc1234, 2026-02-10T12:00:00Z)".
func Info() string {
	commit, buildTime, dirty := stamp()
	if dirty {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (%s, %s)", Version, commit, buildTime)
}

// Full returns Info plus the Go version and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func stamp() (commit, buildTime string, dirty bool) {
	commit, buildTime = GitCommit, BuildTime
	if commit != "unknown" {
		return commit, buildTime, false
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return commit, buildTime, false
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			commit = setting.Value
			if len(commit) > 7 {
				commit = commit[:7]
			}
		case "vcs.time":
			if buildTime == "unknown" {
				buildTime = setting.Value
			}
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return commit, buildTime, dirty
}
