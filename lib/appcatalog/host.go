// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package appcatalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/hotpreview/hotpreview/lib/protocol"
	"github.com/hotpreview/hotpreview/lib/registry"
	"github.com/hotpreview/hotpreview/lib/rpc"
)

// Source supplies the snapshot a Host serves.
type Source interface {
	Snapshot() *registry.Snapshot
}

// Catalog is a Source whose snapshot can be swapped at runtime.
type Catalog struct {
	current atomic.Pointer[registry.Snapshot]
}

// NewCatalog returns a Catalog serving snapshot. A nil snapshot serves
// the empty registry.
func NewCatalog(snapshot *registry.Snapshot) *Catalog {
	catalog := &Catalog{}
	catalog.Store(snapshot)
	return catalog
}

// Snapshot returns the current snapshot.
func (c *Catalog) Snapshot() *registry.Snapshot {
	return c.current.Load()
}

// Store replaces the current snapshot.
func (c *Catalog) Store(snapshot *registry.Snapshot) {
	if snapshot == nil {
		snapshot = registry.Empty()
	}
	c.current.Store(snapshot)
}

// Navigator shows a preview in the app's UI.
type Navigator interface {
	Navigate(ctx context.Context, component *registry.UIComponent, preview registry.Preview) error
}

// Renderer produces an encoded image of a preview.
type Renderer interface {
	Render(ctx context.Context, component *registry.UIComponent, preview registry.Preview) ([]byte, error)
}

// CommandFunc runs an app command.
type CommandFunc func(ctx context.Context) error

// HostConfig configures a Host.
type HostConfig struct {
	// Source supplies the catalog. Required.
	Source Source

	// Navigator handles previews/navigate. When nil, navigation only
	// validates its target.
	Navigator Navigator

	// Renderer handles previews/snapshot. When nil, snapshot requests
	// fail with an internal error.
	Renderer Renderer

	// Commands maps command names to their implementations. A command
	// present in the catalog without an entry here is a no-op.
	Commands map[string]CommandFunc

	// Logger is required.
	Logger *slog.Logger
}

// Host serves a catalog as a protocol.AppService.
type Host struct {
	source    Source
	navigator Navigator
	renderer  Renderer
	commands  map[string]CommandFunc
	logger    *slog.Logger
}

var _ protocol.AppService = (*Host)(nil)

// NewHost creates a Host. Panics if Source or Logger is nil.
func NewHost(config HostConfig) *Host {
	if config.Source == nil {
		panic("appcatalog: HostConfig.Source is required")
	}
	if config.Logger == nil {
		panic("appcatalog: HostConfig.Logger is required")
	}
	return &Host{
		source:    config.Source,
		navigator: config.Navigator,
		renderer:  config.Renderer,
		commands:  config.Commands,
		logger:    config.Logger,
	}
}

// GetAppInfo returns the full catalog.
func (h *Host) GetAppInfo(ctx context.Context) (*protocol.AppInfo, error) {
	return protocol.NewAppInfo(h.source.Snapshot()), nil
}

// GetComponent returns the named component, or nil if it is unknown.
func (h *Host) GetComponent(ctx context.Context, name string) (*protocol.ComponentInfo, error) {
	component, ok := h.source.Snapshot().Component(name)
	if !ok {
		return nil, nil
	}
	info := protocol.NewComponentInfo(component)
	return &info, nil
}

// GetCommand returns the named command, or nil if it is unknown.
func (h *Host) GetCommand(ctx context.Context, name string) (*protocol.CommandInfo, error) {
	command, ok := h.source.Snapshot().Command(name)
	if !ok {
		return nil, nil
	}
	info := protocol.NewCommandInfo(command)
	return &info, nil
}

// NavigateToPreview shows a preview.
func (h *Host) NavigateToPreview(ctx context.Context, componentName, previewName string) error {
	component, preview, err := h.resolvePreview(componentName, previewName)
	if err != nil {
		return err
	}
	h.logger.Info("navigating", "component", componentName, "preview", previewName)
	if h.navigator == nil {
		return nil
	}
	return h.navigator.Navigate(ctx, component, preview)
}

// GetPreviewSnapshot renders a preview.
func (h *Host) GetPreviewSnapshot(ctx context.Context, componentName, previewName string) ([]byte, error) {
	component, preview, err := h.resolvePreview(componentName, previewName)
	if err != nil {
		return nil, err
	}
	if h.renderer == nil {
		return nil, rpc.Errorf(rpc.CodeInternal, "snapshots are not supported by this app")
	}
	image, err := h.renderer.Render(ctx, component, preview)
	if err != nil {
		return nil, fmt.Errorf("rendering %s/%s: %w", componentName, previewName, err)
	}
	return image, nil
}

// InvokeCommand runs a command.
func (h *Host) InvokeCommand(ctx context.Context, name string) error {
	if _, ok := h.source.Snapshot().Command(name); !ok {
		return rpc.Errorf(rpc.CodeNotFound, "command %q not found", name)
	}
	h.logger.Info("invoking command", "command", name)
	run, ok := h.commands[name]
	if !ok {
		return nil
	}
	return run(ctx)
}

func (h *Host) resolvePreview(componentName, previewName string) (*registry.UIComponent, registry.Preview, error) {
	component, ok := h.source.Snapshot().Component(componentName)
	if !ok {
		return nil, registry.Preview{}, rpc.Errorf(rpc.CodeNotFound, "component %q not found", componentName)
	}
	preview, ok := component.Preview(previewName)
	if !ok {
		return nil, registry.Preview{}, rpc.Errorf(rpc.CodeNotFound, "preview %q of %q not found", previewName, componentName)
	}
	return component, preview, nil
}
