// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package tooling

import (
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// DirectoryConfig configures a Directory and the Apps it creates.
type DirectoryConfig struct {
	// Logger is the structured logger. Required.
	Logger *slog.Logger

	// Metrics records activity. Optional.
	Metrics *Metrics

	// Status receives capture progress. Optional.
	Status StatusSink

	// BringToFront foregrounds app windows before navigating, through
	// Foregrounder. Without a Foregrounder it has no effect and
	// NewDirectory logs a warning.
	BringToFront bool
	Foregrounder Foregrounder

	// SnapshotDirName is the directory, next to the project file, that
	// captured images go into. Default: "snapshots".
	SnapshotDirName string

	// CaptureConcurrency bounds how many sessions capture at once.
	// Zero means no bound.
	CaptureConcurrency int
}

// Directory maps project paths to Apps for the lifetime of the tooling
// process. An App is present exactly while it has at least one session
// or is pinned.
type Directory struct {
	config DirectoryConfig
	logger *slog.Logger

	mu   sync.Mutex
	apps map[string]*App
}

// NewDirectory creates an empty directory.
func NewDirectory(config DirectoryConfig) *Directory {
	if config.Logger == nil {
		panic("tooling.Directory: Logger is required")
	}
	if config.Status == nil {
		config.Status = discardStatus{}
	}
	if config.SnapshotDirName == "" {
		config.SnapshotDirName = "snapshots"
	}
	if config.BringToFront && config.Foregrounder == nil {
		config.Logger.Warn("bring-to-front is enabled but no foregrounder is available; app windows will not be raised")
	}
	return &Directory{
		config: config,
		logger: config.Logger,
		apps:   make(map[string]*App),
	}
}

// GetOrCreate returns the App for projectPath, creating it if needed.
// A newly created App without sessions is removed again by the next
// Remove unless it gains a session or a pin first.
func (d *Directory) GetOrCreate(projectPath string) *App {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.getOrCreateLocked(projectPath)
}

func (d *Directory) getOrCreateLocked(projectPath string) *App {
	projectPath = normalizeProjectPath(projectPath)
	if app, ok := d.apps[projectPath]; ok {
		return app
	}
	app := newApp(projectPath, d)
	d.apps[projectPath] = app
	d.config.Metrics.appAdded()
	d.logger.Info("app added", "project", projectPath)
	return app
}

// Lookup returns the App for projectPath.
func (d *Directory) Lookup(projectPath string) (*App, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	app, ok := d.apps[normalizeProjectPath(projectPath)]
	return app, ok
}

// Apps returns every App sorted by project path.
func (d *Directory) Apps() []*App {
	d.mu.Lock()
	apps := make([]*App, 0, len(d.apps))
	for _, app := range d.apps {
		apps = append(apps, app)
	}
	d.mu.Unlock()
	slices.SortFunc(apps, func(a, b *App) int { return strings.Compare(a.projectPath, b.projectPath) })
	return apps
}

// Pin creates the App for projectPath if needed and pins it.
func (d *Directory) Pin(projectPath string) *App {
	d.mu.Lock()
	defer d.mu.Unlock()
	app := d.getOrCreateLocked(projectPath)
	app.Pin()
	return app
}

// Remove drops the App for projectPath if it has no sessions and is not
// pinned, and reports whether it did. A session that joined after the
// caller decided to remove keeps the App alive.
func (d *Directory) Remove(projectPath string) bool {
	projectPath = normalizeProjectPath(projectPath)
	d.mu.Lock()
	defer d.mu.Unlock()
	app, ok := d.apps[projectPath]
	if !ok || !app.removable() {
		return false
	}
	delete(d.apps, projectPath)
	d.config.Metrics.appRemoved()
	d.logger.Info("app removed", "project", projectPath)
	return true
}

// register attaches session to the App for projectPath. Both steps run
// under the directory lock so a concurrent Remove cannot drop the App
// between creation and attachment.
func (d *Directory) register(projectPath string, session *Session) *App {
	d.mu.Lock()
	defer d.mu.Unlock()
	app := d.getOrCreateLocked(projectPath)
	app.AddSession(session)
	return app
}

func normalizeProjectPath(projectPath string) string {
	if projectPath == "" {
		return ""
	}
	return filepath.Clean(projectPath)
}
