// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package registry

// Merge consolidates the snapshots of several instances of the same
// app. Nil snapshots are skipped. With no remaining snapshots Merge
// returns nil; with exactly one it returns that snapshot unchanged.
//
// Otherwise components, categories, and commands are unioned by name.
// When two snapshots define the same component, the first definition
// wins for every attribute except previews, which are unioned by
// preview name in first-seen order. A component whose first definition
// is KindUnknown takes the first known kind from a later definition.
// Category member lists are unioned the same way. The first definition
// of a command wins.
func Merge(snapshots ...*Snapshot) *Snapshot {
	var present []*Snapshot
	for _, snapshot := range snapshots {
		if snapshot != nil {
			present = append(present, snapshot)
		}
	}
	switch len(present) {
	case 0:
		return nil
	case 1:
		return present[0]
	}

	components := make(map[string]*UIComponent)
	categories := make(map[string]*Category)
	commands := make(map[string]Command)

	for _, snapshot := range present {
		for name, component := range snapshot.components {
			existing, ok := components[name]
			if !ok {
				components[name] = component
				continue
			}
			components[name] = mergeComponent(existing, component)
		}
		for name, category := range snapshot.categories {
			if existing, ok := categories[name]; ok {
				categories[name] = existing.WithComponents(category.components...)
				continue
			}
			categories[name] = category
		}
		for name, command := range snapshot.commands {
			if _, ok := commands[name]; !ok {
				commands[name] = command
			}
		}
	}

	return newSnapshot(components, categories, commands)
}

func mergeComponent(first, later *UIComponent) *UIComponent {
	merged := first
	if merged.kind == KindUnknown && later.kind != KindUnknown {
		merged = merged.withKind(later.kind)
	}
	for _, preview := range later.previews {
		if _, ok := merged.Preview(preview.Name); !ok {
			merged = merged.WithPreview(preview)
		}
	}
	return merged
}
