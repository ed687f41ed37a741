// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package naming

// Table holds the precomputed short name of every name in one set.
// Computing one short name requires scanning its whole simple-name
// bucket, so the table resolves every bucket once up front.
//
// A Table is immutable after construction and safe for concurrent use.
type Table struct {
	short map[string]string
}

// NewTable buckets names by simple name and computes each short name.
// Duplicate names are collapsed.
func NewTable(names []string) *Table {
	buckets := make(map[string][]string)
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, duplicate := seen[name]; duplicate {
			continue
		}
		seen[name] = struct{}{}
		simple := SimpleName(name)
		buckets[simple] = append(buckets[simple], name)
	}

	table := &Table{short: make(map[string]string, len(seen))}
	for _, bucket := range buckets {
		for _, name := range bucket {
			table.short[name] = ShortName(name, bucket)
		}
	}
	return table
}

// ShortName returns the precomputed short name for fullName. A name the
// table was not built from has no competitors and gets its simple name.
func (t *Table) ShortName(fullName string) string {
	if short, ok := t.short[fullName]; ok {
		return short
	}
	return SimpleName(fullName)
}

// Len returns the number of distinct names in the table.
func (t *Table) Len() int {
	return len(t.short)
}
