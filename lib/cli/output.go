// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"io"
	"reflect"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used for human-readable output.
type Styles struct {
	Heading lipgloss.Style
	Faint   lipgloss.Style
	Good    lipgloss.Style
	Bad     lipgloss.Style
}

// DefaultStyles returns the stock palette. lipgloss strips the styling
// when the output is not a terminal.
func DefaultStyles() Styles {
	return Styles{
		Heading: lipgloss.NewStyle().Bold(true),
		Faint:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Good:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Bad:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// WriteJSON writes value as indented JSON. A nil slice is written as [].
func WriteJSON(w io.Writer, value any) error {
	if v := reflect.ValueOf(value); v.Kind() == reflect.Slice && v.IsNil() {
		value = reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// Table renders rows as left-aligned columns separated by three spaces.
// Cell widths are measured with lipgloss.Width so styled cells align.
type Table struct {
	// Header is rendered first with the heading style when non-empty.
	Header []string

	// Indent is the number of spaces before each row.
	Indent int

	rows [][]string
}

// Append adds a row.
func (t *Table) Append(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render writes the table to w.
func (t *Table) Render(w io.Writer) {
	rows := t.rows
	if len(t.Header) > 0 {
		heading := DefaultStyles().Heading
		header := make([]string, len(t.Header))
		for i, cell := range t.Header {
			header[i] = heading.Render(cell)
		}
		rows = append([][]string{header}, rows...)
	}

	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	indent := strings.Repeat(" ", t.Indent)
	for _, row := range rows {
		var line strings.Builder
		line.WriteString(indent)
		for i, cell := range row {
			line.WriteString(cell)
			if i < len(row)-1 {
				line.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+3))
			}
		}
		io.WriteString(w, strings.TrimRight(line.String(), " ")+"\n")
	}
}
