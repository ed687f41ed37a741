// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

// PreviewInfo describes one preview. DisplayName is the explicit
// override, empty when the name should be derived.
type PreviewInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
}

// ComponentInfo describes one UI component. Kind is "page", "control",
// or empty for unknown.
type ComponentInfo struct {
	Name        string        `json:"name"`
	Kind        string        `json:"kind,omitempty"`
	DisplayName string        `json:"displayName,omitempty"`
	Category    string        `json:"category,omitempty"`
	BaseType    string        `json:"baseType,omitempty"`
	Previews    []PreviewInfo `json:"previews,omitempty"`
}

// CommandInfo describes one parameterless command.
type CommandInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
}

// CategoryInfo declares a category and the component names it claims.
type CategoryInfo struct {
	Name       string   `json:"name"`
	Components []string `json:"components,omitempty"`
}

// BaseTypeInfo maps a base type name to the kind of the components
// deriving from it.
type BaseTypeInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// AppInfo is the full catalog returned by app/getInfo.
type AppInfo struct {
	Components []ComponentInfo `json:"components,omitempty"`
	Commands   []CommandInfo   `json:"commands,omitempty"`
	Categories []CategoryInfo  `json:"categories,omitempty"`
	BaseTypes  []BaseTypeInfo  `json:"baseTypes,omitempty"`
}

// RegisterAppParams identifies the app instance registering with the
// tooling process.
type RegisterAppParams struct {
	ProjectPath  string `json:"projectPath"`
	PlatformName string `json:"platformName"`
}

// ToolingInfo is returned by tooling/getInfo.
type ToolingInfo struct {
	ProtocolVersion     int    `json:"protocolVersion"`
	AppConnectionString string `json:"appConnectionString,omitempty"`
}

// NameParams addresses a component or command by name.
type NameParams struct {
	Name string `json:"name"`
}

// PreviewParams addresses one preview of one component.
type PreviewParams struct {
	Component string `json:"component"`
	Preview   string `json:"preview"`
}

// SnapshotResult carries an encoded preview image.
type SnapshotResult struct {
	Image []byte `json:"image"`
}
