// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"errors"
	"fmt"
	"slices"
)

// ErrFrozen is returned by every Builder method after ToImmutable has
// been called.
var ErrFrozen = errors.New("registry builder already frozen")

// Builder accumulates components, categories, commands, and base-type
// hints, then produces one Snapshot. A Builder is not safe for
// concurrent use and cannot be reused after ToImmutable.
type Builder struct {
	components map[string]*UIComponent
	categories map[string]*Category
	commands   map[string]Command
	baseTypes  map[string]Kind
	frozen     bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		components: make(map[string]*UIComponent),
		categories: make(map[string]*Category),
		commands:   make(map[string]Command),
		baseTypes:  make(map[string]Kind),
	}
}

// AddComponent adds a component. Component names must be unique.
func (b *Builder) AddComponent(component *UIComponent) error {
	if b.frozen {
		return ErrFrozen
	}
	if component == nil || component.name == "" {
		return errors.New("component name is required")
	}
	if _, exists := b.components[component.name]; exists {
		return fmt.Errorf("duplicate component %q", component.name)
	}
	b.components[component.name] = component
	return nil
}

// AddPreview appends a preview to an already added component.
func (b *Builder) AddPreview(componentName string, preview Preview) error {
	if b.frozen {
		return ErrFrozen
	}
	component, ok := b.components[componentName]
	if !ok {
		return fmt.Errorf("preview %q: unknown component %q", preview.Name, componentName)
	}
	if preview.Name == "" {
		return fmt.Errorf("component %q: preview name is required", componentName)
	}
	if _, exists := component.Preview(preview.Name); exists {
		return fmt.Errorf("component %q: duplicate preview %q", componentName, preview.Name)
	}
	b.components[componentName] = component.WithPreview(preview)
	return nil
}

// AddCategory declares a category, or extends an existing one with the
// names it does not already claim.
func (b *Builder) AddCategory(name string, componentNames ...string) error {
	if b.frozen {
		return ErrFrozen
	}
	if name == "" {
		return errors.New("category name is required")
	}
	if existing, ok := b.categories[name]; ok {
		b.categories[name] = existing.WithComponents(componentNames...)
		return nil
	}
	b.categories[name] = NewCategory(name, componentNames...)
	return nil
}

// AddCommand adds a command. Command names must be unique.
func (b *Builder) AddCommand(command Command) error {
	if b.frozen {
		return ErrFrozen
	}
	if command.Name == "" {
		return errors.New("command name is required")
	}
	if _, exists := b.commands[command.Name]; exists {
		return fmt.Errorf("duplicate command %q", command.Name)
	}
	b.commands[command.Name] = command
	return nil
}

// AddBaseType records that components deriving from typeName are of
// the given kind.
func (b *Builder) AddBaseType(typeName string, kind Kind) error {
	if b.frozen {
		return ErrFrozen
	}
	b.baseTypes[typeName] = kind
	return nil
}

// Component returns a component added so far.
func (b *Builder) Component(name string) (*UIComponent, bool) {
	component, ok := b.components[name]
	return component, ok
}

// ToImmutable validates the accumulated state and freezes it into a
// Snapshot. Every component's declared category must have been added.
// Components of KindUnknown take the kind of their base type when a
// hint names it. On error the builder is still frozen.
func (b *Builder) ToImmutable() (*Snapshot, error) {
	if b.frozen {
		return nil, ErrFrozen
	}
	b.frozen = true

	var errs []error
	names := make([]string, 0, len(b.components))
	for name := range b.components {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		component := b.components[name]
		if component.category != "" {
			if _, ok := b.categories[component.category]; !ok {
				errs = append(errs, fmt.Errorf("component %q: undeclared category %q", name, component.category))
			}
		}
		if component.kind == KindUnknown && component.baseType != "" {
			if kind, ok := b.baseTypes[component.baseType]; ok {
				b.components[name] = component.withKind(kind)
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	// Declaring a category on the component is equivalent to listing it
	// in the category.
	for _, name := range names {
		component := b.components[name]
		if component.category != "" {
			b.categories[component.category] = b.categories[component.category].WithComponents(name)
		}
	}

	return newSnapshot(b.components, b.categories, b.commands), nil
}
