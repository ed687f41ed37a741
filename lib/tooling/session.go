// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package tooling

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hotpreview/hotpreview/lib/protocol"
	"github.com/hotpreview/hotpreview/lib/registry"
	"github.com/hotpreview/hotpreview/lib/rpc"
)

// SessionState is the lifecycle position of a Session. States only move
// forward.
type SessionState int32

const (
	StateAccepted SessionState = iota
	StateHandshaking
	StateRegistered
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateAccepted:
		return "accepted"
	case StateHandshaking:
		return "handshaking"
	case StateRegistered:
		return "registered"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("SessionState(%d)", int32(s))
	}
}

// Session is one live connection from one running app instance. It
// serves the tooling-side methods to the app and holds a proxy for the
// app-side methods.
type Session struct {
	id          string
	remoteAddr  string
	remote      protocol.AppService
	transport   io.Closer
	directory   *Directory
	toolingInfo protocol.ToolingInfo
	logger      *slog.Logger
	metrics     *Metrics

	state    atomic.Int32
	snapshot atomic.Pointer[registry.Snapshot]

	mu          sync.Mutex
	owner       *App
	projectPath string
	platform    string
}

// sessionConfig carries a Session's collaborators.
type sessionConfig struct {
	ID          string
	RemoteAddr  string
	Remote      protocol.AppService
	Transport   io.Closer
	Directory   *Directory
	ToolingInfo protocol.ToolingInfo
	Logger      *slog.Logger
	Metrics     *Metrics
}

func newSession(config sessionConfig) *Session {
	return &Session{
		id:          config.ID,
		remoteAddr:  config.RemoteAddr,
		remote:      config.Remote,
		transport:   config.Transport,
		directory:   config.Directory,
		toolingInfo: config.ToolingInfo,
		logger:      config.Logger,
		metrics:     config.Metrics,
	}
}

var _ protocol.ToolingService = (*Session)(nil)

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// RemoteAddr returns the app's network address.
func (s *Session) RemoteAddr() string { return s.remoteAddr }

// State returns the current lifecycle state.
func (s *Session) State() SessionState { return SessionState(s.state.Load()) }

// Snapshot returns the most recently fetched registry snapshot, or nil
// before registration completes.
func (s *Session) Snapshot() *registry.Snapshot { return s.snapshot.Load() }

// Remote returns the proxy for the app's methods.
func (s *Session) Remote() protocol.AppService { return s.remote }

// Platform returns the platform name the app registered with.
func (s *Session) Platform() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.platform
}

// ProjectPath returns the project path the app registered with.
func (s *Session) ProjectPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectPath
}

// App returns the owning App, or nil when not registered.
func (s *Session) App() *App {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

func (s *Session) setOwner(app *App) {
	s.mu.Lock()
	s.owner = app
	s.mu.Unlock()
}

// live reports whether the session is registered and not closed.
func (s *Session) live() bool {
	return s.State() == StateRegistered
}

// RegisterApp fetches the app's catalog, publishes the session's
// snapshot, and joins the App for params.ProjectPath. A session
// registers once; a failed handshake closes the session.
func (s *Session) RegisterApp(ctx context.Context, params protocol.RegisterAppParams) error {
	if !s.state.CompareAndSwap(int32(StateAccepted), int32(StateHandshaking)) {
		return rpc.Errorf(rpc.CodeInvalidParams, "session already %s", s.State())
	}

	snapshot, err := s.fetchSnapshot(ctx)
	if err != nil {
		s.logger.Warn("registration handshake failed",
			"project", params.ProjectPath,
			"platform", params.PlatformName,
			"error", err,
		)
		s.Close()
		return err
	}

	s.mu.Lock()
	s.projectPath = params.ProjectPath
	s.platform = params.PlatformName
	s.mu.Unlock()
	s.snapshot.Store(snapshot)

	// Registered must be visible before the App recomputes, so fan-outs
	// started right after registration include this session.
	if !s.state.CompareAndSwap(int32(StateHandshaking), int32(StateRegistered)) {
		return rpc.ErrClosed
	}
	s.directory.register(params.ProjectPath, s)
	s.metrics.registered()

	s.logger.Info("session registered",
		"project", params.ProjectPath,
		"platform", params.PlatformName,
		"components", snapshot.ComponentCount(),
		"commands", snapshot.CommandCount(),
	)
	return nil
}

// ComponentsChanged refetches the catalog and has the owning App
// recompute its consolidated snapshot.
func (s *Session) ComponentsChanged(ctx context.Context) error {
	if !s.live() {
		return rpc.Errorf(rpc.CodeInvalidParams, "session is %s, not registered", s.State())
	}
	snapshot, err := s.fetchSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("refreshing components: %w", err)
	}
	s.snapshot.Store(snapshot)
	if app := s.App(); app != nil {
		app.recompute()
	}
	s.logger.Info("components changed",
		"components", snapshot.ComponentCount(),
		"commands", snapshot.CommandCount(),
	)
	return nil
}

// GetToolingInfo reports the protocol version and the connection string
// apps should use.
func (s *Session) GetToolingInfo(ctx context.Context) (*protocol.ToolingInfo, error) {
	info := s.toolingInfo
	return &info, nil
}

// Close tears down the transport. The session leaves its App once the
// connection has finished.
func (s *Session) Close() error {
	if s.transport == nil {
		return nil
	}
	return s.transport.Close()
}

// terminate moves the session to StateClosed and removes it from its
// App. Called once when the connection has ended.
func (s *Session) terminate() {
	previous := SessionState(s.state.Swap(int32(StateClosed)))
	if previous == StateClosed {
		return
	}
	if app := s.App(); app != nil {
		app.RemoveSession(s)
	}
	s.logger.Info("session closed", "previous_state", previous.String())
}

func (s *Session) fetchSnapshot(ctx context.Context) (*registry.Snapshot, error) {
	info, err := s.remote.GetAppInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching app info: %w", err)
	}
	snapshot, err := info.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("building registry snapshot: %w", err)
	}
	return snapshot, nil
}
