// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package automation

import "github.com/hotpreview/hotpreview/lib/tooling"

// AppView describes one app in the directory.
type AppView struct {
	ProjectPath string        `json:"projectPath"`
	Pinned      bool          `json:"pinned"`
	Components  int           `json:"components"`
	Commands    int           `json:"commands"`
	Sessions    []SessionView `json:"sessions"`
}

// SessionView describes one connected app instance.
type SessionView struct {
	ID         string `json:"id"`
	Platform   string `json:"platform,omitempty"`
	State      string `json:"state"`
	RemoteAddr string `json:"remoteAddr,omitempty"`
}

// CategoryView is one group of the categorized component listing.
type CategoryView struct {
	Name       string          `json:"name"`
	Components []ComponentView `json:"components"`
}

// ComponentView describes a component with its disambiguated short name.
type ComponentView struct {
	Name        string        `json:"name"`
	DisplayName string        `json:"displayName"`
	Kind        string        `json:"kind"`
	ShortName   string        `json:"shortName"`
	Previews    []PreviewView `json:"previews"`
}

// PreviewView describes a preview with its disambiguated short name.
type PreviewView struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	ShortName   string `json:"shortName"`
}

// CommandView describes a command.
type CommandView struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// NavigateRequest is the body of POST /apps/navigate.
type NavigateRequest struct {
	Project   string `json:"project"`
	Component string `json:"component"`
	Preview   string `json:"preview"`
}

// InvokeRequest is the body of POST /apps/commands/invoke.
type InvokeRequest struct {
	Project string `json:"project"`
	Command string `json:"command"`
}

// SnapshotRequest is the body of POST /apps/snapshots. Category selects
// a whole category and excludes Component and Preview. With neither,
// every preview of the app is captured.
type SnapshotRequest struct {
	Project   string `json:"project"`
	Component string `json:"component,omitempty"`
	Preview   string `json:"preview,omitempty"`
	Category  string `json:"category,omitempty"`
}

// SnapshotResponse lists the images written by a capture. On a partial
// failure it accompanies the error.
type SnapshotResponse struct {
	Snapshots []tooling.CapturedSnapshot `json:"snapshots"`
}

// PinRequest is the body of POST /apps/pin.
type PinRequest struct {
	Project string `json:"project"`
	Pinned  *bool  `json:"pinned"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string                     `json:"error"`
	Code      string                     `json:"code"`
	Snapshots []tooling.CapturedSnapshot `json:"snapshots,omitempty"`
}

// Error codes.
const (
	CodeBadRequest = "bad_request"
	CodeNotFound   = "not_found"
	CodeNoSessions = "no_sessions"
	CodeFailed     = "failed"
)
