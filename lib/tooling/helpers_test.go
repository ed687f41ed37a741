// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package tooling

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hotpreview/hotpreview/lib/protocol"
	"github.com/hotpreview/hotpreview/lib/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDirectory(t *testing.T, configure ...func(*DirectoryConfig)) *Directory {
	t.Helper()
	config := DirectoryConfig{Logger: testLogger()}
	for _, apply := range configure {
		apply(&config)
	}
	return NewDirectory(config)
}

// fakeRemote is an in-memory app instance. Every method except
// GetAppInfo counts as a remote call.
type fakeRemote struct {
	platform string

	mu   sync.Mutex
	info *protocol.AppInfo

	calls atomic.Int64

	// invokeGate, when set, blocks InvokeCommand until it is closed.
	invokeGate  chan struct{}
	invokeErr   error
	invoked     chan string
	navigated   chan protocol.PreviewParams
	snapshotErr error
}

func newFakeRemote(platform string, info *protocol.AppInfo) *fakeRemote {
	return &fakeRemote{
		platform:  platform,
		info:      info,
		invoked:   make(chan string, 16),
		navigated: make(chan protocol.PreviewParams, 16),
	}
}

func (r *fakeRemote) setInfo(info *protocol.AppInfo) {
	r.mu.Lock()
	r.info = info
	r.mu.Unlock()
}

func (r *fakeRemote) GetAppInfo(ctx context.Context) (*protocol.AppInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.info, nil
}

func (r *fakeRemote) GetComponent(ctx context.Context, name string) (*protocol.ComponentInfo, error) {
	r.calls.Add(1)
	return nil, nil
}

func (r *fakeRemote) NavigateToPreview(ctx context.Context, component, preview string) error {
	r.calls.Add(1)
	r.navigated <- protocol.PreviewParams{Component: component, Preview: preview}
	return nil
}

func (r *fakeRemote) GetPreviewSnapshot(ctx context.Context, component, preview string) ([]byte, error) {
	r.calls.Add(1)
	if r.snapshotErr != nil {
		return nil, r.snapshotErr
	}
	return []byte(r.platform + ":" + component + ":" + preview), nil
}

func (r *fakeRemote) GetCommand(ctx context.Context, name string) (*protocol.CommandInfo, error) {
	r.calls.Add(1)
	return nil, nil
}

func (r *fakeRemote) InvokeCommand(ctx context.Context, name string) error {
	r.calls.Add(1)
	r.invoked <- name
	if r.invokeGate != nil {
		<-r.invokeGate
	}
	return r.invokeErr
}

// fakeTransport records Close calls.
type fakeTransport struct {
	closed atomic.Bool
}

func (f *fakeTransport) Close() error {
	f.closed.Store(true)
	return nil
}

// registerSession creates a session backed by remote and registers it
// under projectPath.
func registerSession(t *testing.T, directory *Directory, remote *fakeRemote, projectPath string) *Session {
	t.Helper()
	session := newSession(sessionConfig{
		ID:        testutil.UniqueID("session"),
		Remote:    remote,
		Transport: &fakeTransport{},
		Directory: directory,
		Logger:    testLogger(),
	})
	err := session.RegisterApp(context.Background(), protocol.RegisterAppParams{
		ProjectPath:  projectPath,
		PlatformName: remote.platform,
	})
	if err != nil {
		t.Fatalf("RegisterApp(%s, %s): %v", projectPath, remote.platform, err)
	}
	return session
}

// catalog builds an AppInfo with one control per component name, each
// with the given previews, plus the given commands.
func catalog(components map[string][]string, commands ...string) *protocol.AppInfo {
	info := &protocol.AppInfo{}
	for name, previews := range components {
		component := protocol.ComponentInfo{Name: name, Kind: "control"}
		for _, preview := range previews {
			component.Previews = append(component.Previews, protocol.PreviewInfo{Name: preview})
		}
		info.Components = append(info.Components, component)
	}
	for _, command := range commands {
		info.Commands = append(info.Commands, protocol.CommandInfo{Name: command})
	}
	return info
}

// waitFor polls condition until it holds or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, description string, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out after %v waiting for %s", timeout, description)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
