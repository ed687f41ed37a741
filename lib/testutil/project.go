// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ProjectPath creates an empty project file inside a fresh temporary
// directory and returns its path. Snapshot capture writes next to the
// project file, so tests that capture need a real directory.
func ProjectPath(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("creating project file %s: %v", path, err)
	}
	return path
}
