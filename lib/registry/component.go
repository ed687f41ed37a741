// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hotpreview/hotpreview/lib/naming"
)

// Kind classifies a UI component.
type Kind int

const (
	KindUnknown Kind = iota
	KindPage
	KindControl
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPage:
		return "page"
	case KindControl:
		return "control"
	default:
		return "unknown"
	}
}

// ParseKind converts a wire name to a Kind. Matching is
// case-insensitive; an empty string is KindUnknown.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(value) {
	case "", "unknown":
		return KindUnknown, nil
	case "page":
		return KindPage, nil
	case "control":
		return KindControl, nil
	default:
		return KindUnknown, fmt.Errorf("unknown component kind %q", value)
	}
}

// Preview is a named, instantiable example of a UI component.
type Preview struct {
	// Name is the stable, method- or type-qualified preview name.
	Name string

	// DisplayNameOverride replaces the derived display name when set.
	DisplayNameOverride string
}

// DisplayName returns the override, or a title-cased simple name.
func (p Preview) DisplayName() string {
	return displayName(p.Name, p.DisplayNameOverride)
}

// Command is a named, parameterless action the app can run on request.
type Command struct {
	Name                string
	DisplayNameOverride string
}

// DisplayName returns the override, or a title-cased simple name.
func (c Command) DisplayName() string {
	return displayName(c.Name, c.DisplayNameOverride)
}

// UIComponent is a previewable page or control type. Values are
// immutable: the With methods return modified copies and never touch
// the receiver, so a component reachable from a published Snapshot can
// be shared freely.
type UIComponent struct {
	name                string
	kind                Kind
	displayNameOverride string
	category            string
	baseType            string
	previews            []Preview
}

// NewUIComponent creates a component with no previews.
func NewUIComponent(name string, kind Kind) *UIComponent {
	return &UIComponent{name: name, kind: kind}
}

// Name returns the fully-qualified component name.
func (c *UIComponent) Name() string { return c.name }

// Kind returns the component kind.
func (c *UIComponent) Kind() Kind { return c.kind }

// Category returns the declared category name, or "".
func (c *UIComponent) Category() string { return c.category }

// BaseType returns the declared base type name, or "".
func (c *UIComponent) BaseType() string { return c.baseType }

// DisplayName returns the override, or a title-cased simple name.
func (c *UIComponent) DisplayName() string {
	return displayName(c.name, c.displayNameOverride)
}

// DisplayNameOverride returns the explicit display name, or "".
func (c *UIComponent) DisplayNameOverride() string { return c.displayNameOverride }

// Previews returns the previews in insertion order. The slice is a copy.
func (c *UIComponent) Previews() []Preview { return slices.Clone(c.previews) }

// PreviewCount returns the number of previews.
func (c *UIComponent) PreviewCount() int { return len(c.previews) }

// HasPreviews reports whether the component has at least one preview.
func (c *UIComponent) HasPreviews() bool { return len(c.previews) > 0 }

// Preview looks up a preview by name.
func (c *UIComponent) Preview(name string) (Preview, bool) {
	for _, preview := range c.previews {
		if preview.Name == name {
			return preview, true
		}
	}
	return Preview{}, false
}

// WithPreview returns a copy with preview appended.
func (c *UIComponent) WithPreview(preview Preview) *UIComponent {
	copied := *c
	copied.previews = append(slices.Clip(c.previews), preview)
	return &copied
}

// WithDisplayName returns a copy with the display name override set.
func (c *UIComponent) WithDisplayName(displayName string) *UIComponent {
	copied := *c
	copied.displayNameOverride = displayName
	return &copied
}

// WithCategory returns a copy declaring membership in category.
func (c *UIComponent) WithCategory(category string) *UIComponent {
	copied := *c
	copied.category = category
	return &copied
}

// WithBaseType returns a copy with the base type name set. Builders use
// the base type to resolve KindUnknown through base-type hints.
func (c *UIComponent) WithBaseType(baseType string) *UIComponent {
	copied := *c
	copied.baseType = baseType
	return &copied
}

// withKind returns a copy with the kind replaced.
func (c *UIComponent) withKind(kind Kind) *UIComponent {
	copied := *c
	copied.kind = kind
	return &copied
}

// Category is a named, declarative grouping of component names. Members
// are resolved against a snapshot at query time, so a category may name
// components the snapshot does not contain.
type Category struct {
	name       string
	components []string
}

// NewCategory creates a category claiming the given component names.
// Duplicate names are dropped, first occurrence wins.
func NewCategory(name string, componentNames ...string) *Category {
	return (&Category{name: name}).WithComponents(componentNames...)
}

// Name returns the category name.
func (c *Category) Name() string { return c.name }

// ComponentNames returns the claimed component names in declaration
// order. The slice is a copy.
func (c *Category) ComponentNames() []string { return slices.Clone(c.components) }

// Claims reports whether the category lists componentName.
func (c *Category) Claims(componentName string) bool {
	return slices.Contains(c.components, componentName)
}

// WithComponents returns a copy extended by the names it does not
// already claim.
func (c *Category) WithComponents(componentNames ...string) *Category {
	copied := &Category{name: c.name, components: slices.Clone(c.components)}
	for _, name := range componentNames {
		if !slices.Contains(copied.components, name) {
			copied.components = append(copied.components, name)
		}
	}
	return copied
}

// displayName derives a human label: the override when present,
// otherwise the last dot-segment with underscores as word breaks and
// each word title-cased.
func displayName(name, override string) string {
	if override != "" {
		return override
	}
	simple := strings.ReplaceAll(naming.SimpleName(name), "_", " ")
	return cases.Title(language.Und, cases.NoLower).String(simple)
}
