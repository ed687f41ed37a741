// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"fmt"

	"github.com/hotpreview/hotpreview/lib/registry"
)

// Snapshot builds a registry snapshot from the catalog.
func (info *AppInfo) Snapshot() (*registry.Snapshot, error) {
	builder := registry.NewBuilder()

	for _, baseType := range info.BaseTypes {
		kind, err := registry.ParseKind(baseType.Kind)
		if err != nil {
			return nil, fmt.Errorf("base type %q: %w", baseType.Name, err)
		}
		if err := builder.AddBaseType(baseType.Name, kind); err != nil {
			return nil, err
		}
	}

	for _, category := range info.Categories {
		if err := builder.AddCategory(category.Name, category.Components...); err != nil {
			return nil, fmt.Errorf("category %q: %w", category.Name, err)
		}
	}

	for _, component := range info.Components {
		if err := addComponent(builder, component); err != nil {
			return nil, err
		}
	}

	for _, command := range info.Commands {
		if err := builder.AddCommand(registry.Command{
			Name:                command.Name,
			DisplayNameOverride: command.DisplayName,
		}); err != nil {
			return nil, err
		}
	}

	return builder.ToImmutable()
}

func addComponent(builder *registry.Builder, info ComponentInfo) error {
	kind, err := registry.ParseKind(info.Kind)
	if err != nil {
		return fmt.Errorf("component %q: %w", info.Name, err)
	}
	component := registry.NewUIComponent(info.Name, kind).
		WithDisplayName(info.DisplayName).
		WithCategory(info.Category).
		WithBaseType(info.BaseType)
	if err := builder.AddComponent(component); err != nil {
		return err
	}
	for _, preview := range info.Previews {
		if err := builder.AddPreview(info.Name, registry.Preview{
			Name:                preview.Name,
			DisplayNameOverride: preview.DisplayName,
		}); err != nil {
			return err
		}
	}
	return nil
}

// NewAppInfo describes a snapshot in wire form. Base-type hints are
// already resolved into component kinds and are not reproduced.
func NewAppInfo(snapshot *registry.Snapshot) *AppInfo {
	info := &AppInfo{}
	for _, component := range snapshot.Components() {
		info.Components = append(info.Components, NewComponentInfo(component))
	}
	for _, command := range snapshot.Commands() {
		info.Commands = append(info.Commands, NewCommandInfo(command))
	}
	for _, category := range snapshot.Categories() {
		info.Categories = append(info.Categories, CategoryInfo{
			Name:       category.Name(),
			Components: category.ComponentNames(),
		})
	}
	return info
}

// NewComponentInfo describes a component in wire form.
func NewComponentInfo(component *registry.UIComponent) ComponentInfo {
	info := ComponentInfo{
		Name:        component.Name(),
		DisplayName: component.DisplayNameOverride(),
		Category:    component.Category(),
		BaseType:    component.BaseType(),
	}
	if kind := component.Kind(); kind != registry.KindUnknown {
		info.Kind = kind.String()
	}
	for _, preview := range component.Previews() {
		info.Previews = append(info.Previews, PreviewInfo{
			Name:        preview.Name,
			DisplayName: preview.DisplayNameOverride,
		})
	}
	return info
}

// NewCommandInfo describes a command in wire form.
func NewCommandInfo(command registry.Command) CommandInfo {
	return CommandInfo{Name: command.Name, DisplayName: command.DisplayNameOverride}
}
