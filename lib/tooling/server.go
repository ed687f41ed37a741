// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package tooling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/hotpreview/hotpreview/lib/protocol"
	"github.com/hotpreview/hotpreview/lib/rpc"
)

// ServerConfig configures a Server.
type ServerConfig struct {
	// Address is the TCP listen address. Default:
	// protocol.DefaultAddress. The port is the discovery contract, so
	// a bind failure is fatal rather than retried elsewhere.
	Address string

	// AppConnectionString is reported to apps by tooling/getInfo.
	AppConnectionString string

	// Directory receives registered sessions. Required.
	Directory *Directory

	// Logger is the structured logger. Required.
	Logger *slog.Logger

	// Metrics records session activity. Optional.
	Metrics *Metrics
}

// Server accepts app connections and turns each into a Session.
type Server struct {
	address     string
	directory   *Directory
	toolingInfo protocol.ToolingInfo
	logger      *slog.Logger
	metrics     *Metrics

	// ready is closed once the listener is bound.
	ready chan struct{}
	addr  net.Addr

	// activeConnections tracks session goroutines. Serve waits for all
	// of them before returning.
	activeConnections sync.WaitGroup
}

// NewServer creates a server. Call Serve to start accepting.
func NewServer(config ServerConfig) *Server {
	if config.Directory == nil {
		panic("tooling.Server: Directory is required")
	}
	if config.Logger == nil {
		panic("tooling.Server: Logger is required")
	}
	address := config.Address
	if address == "" {
		address = protocol.DefaultAddress
	}
	return &Server{
		address:   address,
		directory: config.Directory,
		toolingInfo: protocol.ToolingInfo{
			ProtocolVersion:     protocol.ProtocolVersion,
			AppConnectionString: config.AppConnectionString,
		},
		logger:  config.Logger,
		metrics: config.Metrics,
		ready:   make(chan struct{}),
	}
}

// Ready returns a channel that is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address. Only valid after Ready is closed.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Serve binds the listener and accepts connections until ctx is
// cancelled. Each connection is served on its own goroutine; a failing
// session never affects the listener. On cancellation every session's
// connection is closed and Serve waits for the sessions to leave their
// Apps before returning.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.address, err)
	}
	defer listener.Close()
	s.addr = listener.Addr()
	close(s.ready)

	// Unblock Accept when the context is cancelled.
	stop := context.AfterFunc(ctx, func() { listener.Close() })
	defer stop()

	s.logger.Info("tooling server listening", "address", s.addr.String())

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.activeConnections.Add(1)
		go func() {
			defer s.activeConnections.Done()
			s.handleConnection(ctx, conn)
		}()
	}

	s.activeConnections.Wait()
	s.logger.Info("tooling server stopped")
	return nil
}

func (s *Server) handleConnection(ctx context.Context, netConn net.Conn) {
	id := uuid.NewString()
	logger := s.logger.With("session", id, "remote", netConn.RemoteAddr().String())

	conn := rpc.NewConn(netConn, logger)
	session := newSession(sessionConfig{
		ID:          id,
		RemoteAddr:  netConn.RemoteAddr().String(),
		Remote:      protocol.NewAppClient(conn),
		Transport:   conn,
		Directory:   s.directory,
		ToolingInfo: s.toolingInfo,
		Logger:      logger,
		Metrics:     s.metrics,
	})
	protocol.ServeTooling(conn, session)

	s.metrics.sessionOpened()
	defer s.metrics.sessionClosed()
	logger.Debug("connection accepted")

	if err := conn.Serve(ctx); err != nil {
		logger.Warn("session transport failed", "error", err)
	}
	session.terminate()
}
