// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package tooling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/hotpreview/hotpreview/lib/registry"
)

// App is one logical application, identified by its project path,
// across every running instance connected to the tooling process.
type App struct {
	projectPath string
	directory   *Directory
	logger      *slog.Logger

	mu       sync.Mutex
	sessions []*Session
	pinned   bool

	snapshot atomic.Pointer[registry.Snapshot]
}

func newApp(projectPath string, directory *Directory) *App {
	return &App{
		projectPath: projectPath,
		directory:   directory,
		logger:      directory.logger.With("project", projectPath),
	}
}

// ProjectPath returns the app's identity.
func (a *App) ProjectPath() string { return a.projectPath }

// Snapshot returns the consolidated registry snapshot: nil with no
// registered sessions, the session's own snapshot with one, and a merge
// of all of them otherwise.
func (a *App) Snapshot() *registry.Snapshot { return a.snapshot.Load() }

// Sessions returns the app's sessions in the order they joined.
func (a *App) Sessions() []*Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.sessions)
}

// Pinned reports whether the app stays in the directory without
// sessions.
func (a *App) Pinned() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pinned
}

// Pin keeps the app in the directory after its last session leaves.
func (a *App) Pin() {
	a.mu.Lock()
	a.pinned = true
	a.mu.Unlock()
}

// Unpin clears the pin. An app without sessions leaves the directory.
func (a *App) Unpin() {
	a.mu.Lock()
	a.pinned = false
	a.mu.Unlock()
	a.directory.Remove(a.projectPath)
}

// AddSession adds a session and recomputes the consolidated snapshot.
// Panics if the session was already added.
func (a *App) AddSession(session *Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if slices.Contains(a.sessions, session) {
		panic(fmt.Sprintf("tooling.App: session %s already added to %s", session.ID(), a.projectPath))
	}
	a.sessions = append(a.sessions, session)
	session.setOwner(a)
	a.recomputeLocked()
}

// RemoveSession removes a session and recomputes the consolidated
// snapshot. When the last session leaves an unpinned app, the app is
// removed from the directory. Removing an absent session is a no-op.
func (a *App) RemoveSession(session *Session) {
	a.mu.Lock()
	index := slices.Index(a.sessions, session)
	if index < 0 {
		a.mu.Unlock()
		return
	}
	a.sessions = slices.Delete(a.sessions, index, index+1)
	a.recomputeLocked()
	removable := len(a.sessions) == 0 && !a.pinned
	a.mu.Unlock()

	if removable {
		a.directory.Remove(a.projectPath)
	}
}

// removable reports whether the directory may drop the app.
func (a *App) removable() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sessions) == 0 && !a.pinned
}

func (a *App) recompute() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recomputeLocked()
}

func (a *App) recomputeLocked() {
	var snapshots []*registry.Snapshot
	for _, session := range a.sessions {
		if snapshot := session.Snapshot(); snapshot != nil {
			snapshots = append(snapshots, snapshot)
		}
	}
	a.snapshot.Store(registry.Merge(snapshots...))
}

// liveSessions returns the registered sessions matching keep.
func (a *App) liveSessions(keep func(*registry.Snapshot) bool) []*Session {
	var result []*Session
	for _, session := range a.Sessions() {
		if session.live() && keep(session.Snapshot()) {
			result = append(result, session)
		}
	}
	return result
}

// Navigate asks every session serving the preview to show it, without
// waiting for the apps to respond. When bring-to-front is enabled each
// app window is foregrounded first. Returns a *NotFoundError when no
// live session has the preview.
func (a *App) Navigate(ctx context.Context, componentName, previewName string) error {
	config := a.directory.config
	targets := a.liveSessions(func(snapshot *registry.Snapshot) bool {
		return snapshot.HasPreview(componentName, previewName)
	})
	if len(targets) == 0 {
		config.Metrics.navigation(resultNotFound)
		return &NotFoundError{Kind: "preview", Name: componentName + "/" + previewName}
	}
	config.Metrics.navigation(resultOK)

	dispatchCtx := context.WithoutCancel(ctx)
	for _, session := range targets {
		go func() {
			if config.BringToFront && config.Foregrounder != nil {
				if err := config.Foregrounder.BringToFront(dispatchCtx, session); err != nil {
					session.logger.Debug("bring to front failed", "error", err)
				}
			}
			if err := session.Remote().NavigateToPreview(dispatchCtx, componentName, previewName); err != nil {
				session.logger.Warn("navigation failed",
					"component", componentName,
					"preview", previewName,
					"error", err,
				)
			}
		}()
	}
	return nil
}

// InvokeCommand runs a command on every live session that has it and
// waits for all of them. Returns a *NotFoundError, without any remote
// call, when no session has the command. Otherwise the result joins
// every session's failure; sessions that succeeded are not rolled back.
func (a *App) InvokeCommand(ctx context.Context, commandName string) error {
	metrics := a.directory.config.Metrics
	targets := a.liveSessions(func(snapshot *registry.Snapshot) bool {
		_, ok := snapshot.Command(commandName)
		return ok
	})
	if len(targets) == 0 {
		metrics.commandInvocation(resultNotFound)
		return &NotFoundError{Kind: "command", Name: commandName}
	}

	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, session := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := session.Remote().InvokeCommand(ctx, commandName); err != nil {
				errs[i] = fmt.Errorf("session %s (%s): %w", session.ID(), session.Platform(), err)
			}
		}()
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		metrics.commandInvocation(resultFailed)
		a.logger.Warn("command failed", "command", commandName, "sessions", len(targets), "error", err)
		return fmt.Errorf("invoking %s: %w", commandName, err)
	}
	metrics.commandInvocation(resultOK)
	a.logger.Info("command invoked", "command", commandName, "sessions", len(targets))
	return nil
}
