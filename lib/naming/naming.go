// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

// Package naming produces short, collision-free labels for fully
// qualified component and preview names. Snapshot files are named from
// these labels, so the result must be deterministic for a fixed set of
// names.
package naming

import "strings"

// Separator divides the segments of a fully qualified name.
const Separator = "."

// SimpleName returns the substring after the last separator, or the
// whole name when it has no separator.
func SimpleName(fullName string) string {
	if index := strings.LastIndex(fullName, Separator); index >= 0 {
		return fullName[index+len(Separator):]
	}
	return fullName
}

// ShortName returns the shortest dot-suffix of fullName that no other
// name in sameSimpleName ends with. sameSimpleName lists every name that
// shares fullName's simple name; fullName itself may be included and is
// ignored.
//
// A suffix of k segments is only compared against names that have at
// least k segments. A shallower name is never a conflict at that depth,
// even if it is entirely contained in the candidate.
func ShortName(fullName string, sameSimpleName []string) string {
	simple := SimpleName(fullName)

	var others [][]string
	for _, name := range sameSimpleName {
		if name == fullName {
			continue
		}
		others = append(others, strings.Split(name, Separator))
	}
	if len(others) == 0 {
		return simple
	}

	segments := strings.Split(fullName, Separator)
	for k := 2; k <= len(segments); k++ {
		candidate := segments[len(segments)-k:]
		if !suffixTaken(candidate, others) {
			return strings.Join(candidate, Separator)
		}
	}
	return fullName
}

// suffixTaken reports whether any of others has at least len(candidate)
// segments and ends with exactly candidate.
func suffixTaken(candidate []string, others [][]string) bool {
	k := len(candidate)
	for _, other := range others {
		if len(other) < k {
			continue
		}
		if equalSegments(other[len(other)-k:], candidate) {
			return true
		}
	}
	return false
}

func equalSegments(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
