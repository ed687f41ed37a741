// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"github.com/hotpreview/hotpreview/lib/naming"
)

// Names of the synthetic categories that collect components no declared
// category claims.
const (
	PagesCategory    = "Pages"
	ControlsCategory = "Controls"
)

// Snapshot is an immutable catalog of components, categories, and
// commands. Construct one with a [Builder] or [Merge]. All methods are
// safe for concurrent use, and a nil *Snapshot behaves as an empty one
// for lookups.
type Snapshot struct {
	components map[string]*UIComponent
	categories map[string]*Category
	commands   map[string]Command

	categorizeOnce sync.Once
	categorized    []CategoryGroup

	namesOnce      sync.Once
	componentNames *naming.Table
	previewNames   map[string]*naming.Table
}

// CategoryGroup is one entry of [Snapshot.CategorizedComponents]: a
// category and its resolved members, sorted by display name.
type CategoryGroup struct {
	Category   *Category
	Components []*UIComponent
}

// Empty returns a snapshot with no components, categories, or commands.
func Empty() *Snapshot {
	return newSnapshot(nil, nil, nil)
}

func newSnapshot(components map[string]*UIComponent, categories map[string]*Category, commands map[string]Command) *Snapshot {
	if components == nil {
		components = make(map[string]*UIComponent)
	}
	if categories == nil {
		categories = make(map[string]*Category)
	}
	if commands == nil {
		commands = make(map[string]Command)
	}
	return &Snapshot{components: components, categories: categories, commands: commands}
}

// Component looks up a component by its full name.
func (s *Snapshot) Component(name string) (*UIComponent, bool) {
	if s == nil {
		return nil, false
	}
	component, ok := s.components[name]
	return component, ok
}

// Command looks up a command by name.
func (s *Snapshot) Command(name string) (Command, bool) {
	if s == nil {
		return Command{}, false
	}
	command, ok := s.commands[name]
	return command, ok
}

// Category looks up a declared category by name. Synthetic categories
// are not declared and are never returned here.
func (s *Snapshot) Category(name string) (*Category, bool) {
	if s == nil {
		return nil, false
	}
	category, ok := s.categories[name]
	return category, ok
}

// HasPreview reports whether the named component exists and has a
// preview with the given name.
func (s *Snapshot) HasPreview(componentName, previewName string) bool {
	component, ok := s.Component(componentName)
	if !ok {
		return false
	}
	_, ok = component.Preview(previewName)
	return ok
}

// Components returns every component sorted by full name.
func (s *Snapshot) Components() []*UIComponent {
	if s == nil {
		return nil
	}
	result := make([]*UIComponent, 0, len(s.components))
	for _, component := range s.components {
		result = append(result, component)
	}
	slices.SortFunc(result, func(a, b *UIComponent) int { return strings.Compare(a.name, b.name) })
	return result
}

// Commands returns every command sorted by name.
func (s *Snapshot) Commands() []Command {
	if s == nil {
		return nil
	}
	result := make([]Command, 0, len(s.commands))
	for _, command := range s.commands {
		result = append(result, command)
	}
	slices.SortFunc(result, func(a, b Command) int { return strings.Compare(a.Name, b.Name) })
	return result
}

// Categories returns the declared categories sorted by name.
func (s *Snapshot) Categories() []*Category {
	if s == nil {
		return nil
	}
	result := make([]*Category, 0, len(s.categories))
	for _, category := range s.categories {
		result = append(result, category)
	}
	slices.SortFunc(result, func(a, b *Category) int { return strings.Compare(a.name, b.name) })
	return result
}

// ComponentCount returns the number of components.
func (s *Snapshot) ComponentCount() int {
	if s == nil {
		return 0
	}
	return len(s.components)
}

// CommandCount returns the number of commands.
func (s *Snapshot) CommandCount() int {
	if s == nil {
		return 0
	}
	return len(s.commands)
}

// CategorizedComponents groups every component under exactly one
// category, computed once per snapshot.
//
// Each declared category lists the members that exist in the snapshot.
// A component claimed by several declared categories is listed only
// under the first of them by category name. Components no declared
// category claims are partitioned by kind into the synthetic "Pages"
// and "Controls" groups; KindUnknown counts as a control. A synthetic
// group is omitted when empty, and merges into a declared category of
// the same name when one exists. Groups are sorted by category name and
// members by display name, case-insensitively.
//
// The returned slice is shared between callers and must not be
// modified.
func (s *Snapshot) CategorizedComponents() []CategoryGroup {
	if s == nil {
		return nil
	}
	s.categorizeOnce.Do(func() {
		s.categorized = s.categorize()
	})
	return s.categorized
}

func (s *Snapshot) categorize() []CategoryGroup {
	declared := s.Categories()
	claimed := make(map[string]bool, len(s.components))
	groups := make(map[string]*CategoryGroup, len(declared)+2)
	var order []string

	for _, category := range declared {
		group := &CategoryGroup{Category: category}
		for _, name := range category.components {
			component, ok := s.components[name]
			if !ok || claimed[name] {
				continue
			}
			claimed[name] = true
			group.Components = append(group.Components, component)
		}
		groups[category.name] = group
		order = append(order, category.name)
	}

	for _, component := range s.Components() {
		if claimed[component.name] {
			continue
		}
		groupName := ControlsCategory
		if component.kind == KindPage {
			groupName = PagesCategory
		}
		group, ok := groups[groupName]
		if !ok {
			group = &CategoryGroup{Category: NewCategory(groupName)}
			groups[groupName] = group
			order = append(order, groupName)
		}
		group.Components = append(group.Components, component)
	}

	slices.Sort(order)
	result := make([]CategoryGroup, 0, len(order))
	for _, name := range order {
		group := groups[name]
		slices.SortStableFunc(group.Components, compareDisplayName)
		result = append(result, *group)
	}
	return result
}

// compareDisplayName orders components by display name ignoring case,
// falling back to the full name so the order is total.
func compareDisplayName(a, b *UIComponent) int {
	return cmp.Or(
		strings.Compare(strings.ToUpper(a.DisplayName()), strings.ToUpper(b.DisplayName())),
		strings.Compare(a.name, b.name),
	)
}

// ComponentShortName returns the shortest dot-suffix of componentName
// that no other component in the snapshot with the same simple name
// shares. The result is stable for the lifetime of the snapshot.
func (s *Snapshot) ComponentShortName(componentName string) string {
	if s == nil {
		return naming.SimpleName(componentName)
	}
	s.buildNameTables()
	return s.componentNames.ShortName(componentName)
}

// PreviewShortName disambiguates previewName against the other previews
// of the same component.
func (s *Snapshot) PreviewShortName(componentName, previewName string) string {
	if s == nil {
		return naming.SimpleName(previewName)
	}
	s.buildNameTables()
	table, ok := s.previewNames[componentName]
	if !ok {
		return naming.SimpleName(previewName)
	}
	return table.ShortName(previewName)
}

func (s *Snapshot) buildNameTables() {
	s.namesOnce.Do(func() {
		componentNames := make([]string, 0, len(s.components))
		s.previewNames = make(map[string]*naming.Table, len(s.components))
		for name, component := range s.components {
			componentNames = append(componentNames, name)
			previewNames := make([]string, len(component.previews))
			for i, preview := range component.previews {
				previewNames[i] = preview.Name
			}
			s.previewNames[name] = naming.NewTable(previewNames)
		}
		s.componentNames = naming.NewTable(componentNames)
	})
}
