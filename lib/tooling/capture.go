// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package tooling

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/hotpreview/hotpreview/lib/registry"
)

// CapturedSnapshot describes one image written (or found unchanged) by
// a capture.
type CapturedSnapshot struct {
	SessionID string `json:"sessionId"`
	Platform  string `json:"platform,omitempty"`
	Component string `json:"component"`
	Preview   string `json:"preview"`
	Path      string `json:"path"`
	Unchanged bool   `json:"unchanged,omitempty"`
}

// previewRef names one preview of one component.
type previewRef struct {
	component *registry.UIComponent
	preview   registry.Preview
}

// CaptureSnapshots captures previews to image files. An empty
// componentName captures every preview of every component; an empty
// previewName captures every preview of the named component.
//
// Images go to a snapshots directory next to the project file, in a
// subdirectory named after the session's platform, and are named from
// the short names of the component and preview. A session without a
// platform name writes into the snapshots directory itself. When
// several sessions share an output directory, each preview is captured
// by the earliest-joined session serving it. Sessions capture
// concurrently, each working through its previews in order. Failures
// are joined; files written before a failure stay.
func (a *App) CaptureSnapshots(ctx context.Context, componentName, previewName string) ([]CapturedSnapshot, error) {
	snapshot := a.Snapshot()
	if snapshot == nil {
		return nil, fmt.Errorf("capturing %s: %w", a.projectPath, ErrNoSessions)
	}

	var targets []previewRef
	switch {
	case componentName == "":
		for _, component := range snapshot.Components() {
			targets = appendPreviews(targets, component)
		}
	case previewName == "":
		component, ok := snapshot.Component(componentName)
		if !ok {
			return nil, &NotFoundError{Kind: "component", Name: componentName}
		}
		targets = appendPreviews(targets, component)
	default:
		component, ok := snapshot.Component(componentName)
		if !ok {
			return nil, &NotFoundError{Kind: "component", Name: componentName}
		}
		preview, ok := component.Preview(previewName)
		if !ok {
			return nil, &NotFoundError{Kind: "preview", Name: componentName + "/" + previewName}
		}
		targets = append(targets, previewRef{component: component, preview: preview})
	}
	return a.capture(ctx, snapshot, targets)
}

// CaptureCategorySnapshots captures every preview of every component
// listed under categoryName by [registry.Snapshot.CategorizedComponents],
// including the synthetic "Pages" and "Controls" groups.
func (a *App) CaptureCategorySnapshots(ctx context.Context, categoryName string) ([]CapturedSnapshot, error) {
	snapshot := a.Snapshot()
	if snapshot == nil {
		return nil, fmt.Errorf("capturing %s: %w", a.projectPath, ErrNoSessions)
	}
	for _, group := range snapshot.CategorizedComponents() {
		if group.Category.Name() != categoryName {
			continue
		}
		var targets []previewRef
		for _, component := range group.Components {
			targets = appendPreviews(targets, component)
		}
		return a.capture(ctx, snapshot, targets)
	}
	return nil, &NotFoundError{Kind: "category", Name: categoryName}
}

func appendPreviews(targets []previewRef, component *registry.UIComponent) []previewRef {
	for _, preview := range component.Previews() {
		targets = append(targets, previewRef{component: component, preview: preview})
	}
	return targets
}

func (a *App) capture(ctx context.Context, snapshot *registry.Snapshot, targets []previewRef) ([]CapturedSnapshot, error) {
	config := a.directory.config
	sessions := a.liveSessions(func(*registry.Snapshot) bool { return true })
	if len(sessions) == 0 {
		return nil, fmt.Errorf("capturing %s: %w", a.projectPath, ErrNoSessions)
	}

	baseDirectory := filepath.Join(filepath.Dir(a.projectPath), config.SnapshotDirName)
	directories := make([]string, len(sessions))
	for i, session := range sessions {
		directories[i] = platformDirectory(baseDirectory, session.Platform())
	}

	// Each output file is claimed by the first session, in join order,
	// whose own snapshot has the preview.
	plans := make([][]previewRef, len(sessions))
	total := 0
	for _, target := range targets {
		claimed := make(map[string]bool)
		for i, session := range sessions {
			if claimed[directories[i]] || !session.Snapshot().HasPreview(target.component.Name(), target.preview.Name) {
				continue
			}
			claimed[directories[i]] = true
			plans[i] = append(plans[i], target)
			total++
		}
	}

	status := config.Status
	results := make([][]CapturedSnapshot, len(sessions))
	errs := make([][]error, len(sessions))
	var progress atomic.Int64

	var group errgroup.Group
	if config.CaptureConcurrency > 0 {
		group.SetLimit(config.CaptureConcurrency)
	}
	for i, session := range sessions {
		if len(plans[i]) == 0 {
			continue
		}
		group.Go(func() error {
			for _, target := range plans[i] {
				if err := ctx.Err(); err != nil {
					errs[i] = append(errs[i], err)
					return nil
				}
				status.Status(fmt.Sprintf("capturing %d of %d: %s/%s",
					progress.Add(1), total, target.component.DisplayName(), target.preview.DisplayName()))

				captured, err := a.captureOne(ctx, snapshot, session, target, directories[i])
				if err != nil {
					config.Metrics.snapshotCapture(resultFailed)
					errs[i] = append(errs[i], fmt.Errorf("session %s (%s): %s/%s: %w",
						session.ID(), session.Platform(), target.component.Name(), target.preview.Name, err))
					continue
				}
				if captured.Unchanged {
					config.Metrics.snapshotCapture(resultUnchanged)
				} else {
					config.Metrics.snapshotCapture(resultOK)
				}
				results[i] = append(results[i], captured)
			}
			return nil
		})
	}
	group.Wait()

	var captured []CapturedSnapshot
	var failures []error
	for i := range sessions {
		captured = append(captured, results[i]...)
		failures = append(failures, errs[i]...)
	}
	a.logger.Info("snapshots captured", "requested", total, "captured", len(captured), "failed", len(failures))
	if err := errors.Join(failures...); err != nil {
		return captured, fmt.Errorf("capturing snapshots: %w", err)
	}
	return captured, nil
}

func (a *App) captureOne(ctx context.Context, snapshot *registry.Snapshot, session *Session, target previewRef, directory string) (CapturedSnapshot, error) {
	componentName := target.component.Name()
	image, err := session.Remote().GetPreviewSnapshot(ctx, componentName, target.preview.Name)
	if err != nil {
		return CapturedSnapshot{}, err
	}

	fileName := pathElement(snapshot.ComponentShortName(componentName) + "-" +
		snapshot.PreviewShortName(componentName, target.preview.Name) + ".png")
	path := filepath.Join(directory, fileName)
	written, err := writeIfChanged(path, image)
	if err != nil {
		return CapturedSnapshot{}, err
	}
	return CapturedSnapshot{
		SessionID: session.ID(),
		Platform:  session.Platform(),
		Component: componentName,
		Preview:   target.preview.Name,
		Path:      path,
		Unchanged: !written,
	}, nil
}

// platformDirectory returns the output directory for a platform.
func platformDirectory(base, platform string) string {
	if platform == "" {
		return base
	}
	return filepath.Join(base, pathElement(platform))
}

// pathElement makes name safe to use as a single file or directory
// name: separators become underscores and "." or ".." are replaced.
func pathElement(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)
	if name == "." || name == ".." {
		return strings.Repeat("_", len(name))
	}
	return name
}

// writeIfChanged writes data to path unless the file already holds the
// same bytes, compared by BLAKE3 digest. The write goes through a temp
// file and rename so readers never see a partial image. Reports whether
// the file was written.
func writeIfChanged(path string, data []byte) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil {
		if blake3.Sum256(existing) == blake3.Sum256(data) {
			return false, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("reading existing snapshot: %w", err)
	}

	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return false, fmt.Errorf("creating snapshot directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(directory, ".snapshot-*.tmp")
	if err != nil {
		return false, fmt.Errorf("creating temp snapshot file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return false, fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return false, fmt.Errorf("closing temp snapshot file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return false, fmt.Errorf("setting snapshot permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return false, fmt.Errorf("renaming snapshot file: %w", err)
	}

	success = true
	return true, nil
}
