// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package appcatalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hotpreview/hotpreview/lib/protocol"
	"github.com/hotpreview/hotpreview/lib/registry"
)

// fileCatalog is the YAML form of a catalog:
//
//	baseTypes:
//	  - name: ContentPage
//	    kind: page
//	categories:
//	  - name: Checkout
//	    components: [Shop.CartPage]
//	components:
//	  - name: Shop.CartPage
//	    baseType: ContentPage
//	    previews:
//	      - name: Empty
//	      - name: WithItems
//	        displayName: With items
//	commands:
//	  - name: ResetData
type fileCatalog struct {
	BaseTypes  []fileBaseType  `yaml:"baseTypes"`
	Categories []fileCategory  `yaml:"categories"`
	Components []fileComponent `yaml:"components"`
	Commands   []fileCommand   `yaml:"commands"`
}

type fileBaseType struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

type fileCategory struct {
	Name       string   `yaml:"name"`
	Components []string `yaml:"components"`
}

type fileComponent struct {
	Name        string        `yaml:"name"`
	Kind        string        `yaml:"kind"`
	DisplayName string        `yaml:"displayName"`
	Category    string        `yaml:"category"`
	BaseType    string        `yaml:"baseType"`
	Previews    []filePreview `yaml:"previews"`
}

type filePreview struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"displayName"`
}

type fileCommand struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"displayName"`
}

// LoadFile reads a YAML catalog and builds its snapshot.
func LoadFile(path string) (*registry.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	snapshot, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snapshot, nil
}

// Parse builds a snapshot from YAML catalog data.
func Parse(data []byte) (*registry.Snapshot, error) {
	var file fileCatalog
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return file.appInfo().Snapshot()
}

func (f *fileCatalog) appInfo() *protocol.AppInfo {
	info := &protocol.AppInfo{}
	for _, baseType := range f.BaseTypes {
		info.BaseTypes = append(info.BaseTypes, protocol.BaseTypeInfo{Name: baseType.Name, Kind: baseType.Kind})
	}
	for _, category := range f.Categories {
		info.Categories = append(info.Categories, protocol.CategoryInfo{Name: category.Name, Components: category.Components})
	}
	for _, component := range f.Components {
		componentInfo := protocol.ComponentInfo{
			Name:        component.Name,
			Kind:        component.Kind,
			DisplayName: component.DisplayName,
			Category:    component.Category,
			BaseType:    component.BaseType,
		}
		for _, preview := range component.Previews {
			componentInfo.Previews = append(componentInfo.Previews, protocol.PreviewInfo{
				Name:        preview.Name,
				DisplayName: preview.DisplayName,
			})
		}
		info.Components = append(info.Components, componentInfo)
	}
	for _, command := range f.Commands {
		info.Commands = append(info.Commands, protocol.CommandInfo{Name: command.Name, DisplayName: command.DisplayName})
	}
	return info
}
