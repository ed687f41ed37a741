// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package connector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/hotpreview/hotpreview/lib/clock"
	"github.com/hotpreview/hotpreview/lib/netutil"
	"github.com/hotpreview/hotpreview/lib/protocol"
	"github.com/hotpreview/hotpreview/lib/rpc"
)

// ErrNotConnected is returned by NotifyComponentsChanged when no
// registered connection is live.
var ErrNotConnected = errors.New("not connected to the tooling process")

// dialTimeout bounds one connect attempt to one candidate address.
const dialTimeout = 5 * time.Second

// Dialer opens transport connections. *net.Dialer implements it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Config configures a Connector.
type Config struct {
	// ConnectionString is "host:port" or "host1,host2:port". Required.
	ConnectionString string

	// ProjectPath identifies the app to the tooling process. Required.
	ProjectPath string

	// PlatformName distinguishes simultaneous instances of one app.
	PlatformName string

	// App serves the app-side methods. Required.
	App protocol.AppService

	// Logger is the structured logger. Required.
	Logger *slog.Logger

	// Dialer defaults to a net.Dialer with a 5 second timeout.
	Dialer Dialer

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Policy defaults to DefaultRetryPolicy.
	Policy *RetryPolicy
}

// Connector maintains the app's connection to the tooling process.
type Connector struct {
	addresses    []string
	projectPath  string
	platformName string
	app          protocol.AppService
	logger       *slog.Logger
	dialer       Dialer
	clock        clock.Clock
	policy       RetryPolicy

	mu     sync.Mutex
	client *protocol.ToolingClient
}

// New validates config and creates a Connector.
func New(config Config) (*Connector, error) {
	if config.ProjectPath == "" {
		return nil, errors.New("connector: ProjectPath is required")
	}
	if config.App == nil {
		return nil, errors.New("connector: App is required")
	}
	if config.Logger == nil {
		return nil, errors.New("connector: Logger is required")
	}
	addresses, err := netutil.ParseConnectionString(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("connector: %w", err)
	}

	connector := &Connector{
		addresses:    addresses,
		projectPath:  config.ProjectPath,
		platformName: config.PlatformName,
		app:          config.App,
		logger:       config.Logger,
		dialer:       config.Dialer,
		clock:        config.Clock,
		policy:       DefaultRetryPolicy,
	}
	if connector.dialer == nil {
		connector.dialer = &net.Dialer{Timeout: dialTimeout}
	}
	if connector.clock == nil {
		connector.clock = clock.Real()
	}
	if config.Policy != nil {
		connector.policy = *config.Policy
	}
	return connector, nil
}

// Run connects, registers, and reconnects after every disconnect until
// ctx is cancelled or the retry policy gives up. Both end the loop with
// a nil error; connection failures are only logged.
func (c *Connector) Run(ctx context.Context) error {
	start := c.clock.Now()
	for attempt := 1; ; attempt++ {
		err := c.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			c.logger.Debug("tooling connection attempt ended", "attempt", attempt, "error", err)
		}

		delay, ok := c.policy.Delay(c.clock.Now().Sub(start))
		if !ok {
			c.giveUp(attempt)
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-c.clock.After(delay):
		}
		if _, ok := c.policy.Delay(c.clock.Now().Sub(start)); !ok {
			c.giveUp(attempt)
			return nil
		}
	}
}

func (c *Connector) giveUp(attempts int) {
	c.logger.Info("giving up on the tooling connection",
		"attempts", attempts,
		"addresses", c.addresses,
	)
}

// Connected reports whether a registered connection is live.
func (c *Connector) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client != nil
}

// NotifyComponentsChanged tells the tooling process to refetch the
// app's catalog.
func (c *Connector) NotifyComponentsChanged(ctx context.Context) error {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()
	if client == nil {
		return ErrNotConnected
	}
	return client.NotifyComponentsChanged(ctx)
}

// session runs one connection from dial to disconnect.
func (c *Connector) session(ctx context.Context) error {
	netConn, address, err := c.dial(ctx)
	if err != nil {
		return err
	}
	logger := c.logger.With("address", address)

	conn := rpc.NewConn(netConn, logger)
	protocol.ServeApp(conn, c.app)
	serveErr := make(chan error, 1)
	go func() { serveErr <- conn.Serve(ctx) }()

	client := protocol.NewToolingClient(conn)
	if err := client.RegisterApp(ctx, c.projectPath, c.platformName); err != nil {
		conn.Close()
		<-serveErr
		return fmt.Errorf("registering with %s: %w", address, err)
	}

	c.setClient(client)
	logger.Info("connected to tooling", "project", c.projectPath, "platform", c.platformName)

	err = <-serveErr
	c.setClient(nil)
	if err != nil {
		return fmt.Errorf("connection to %s: %w", address, err)
	}
	logger.Info("disconnected from tooling")
	return errors.New("connection closed by tooling process")
}

// dial tries each candidate address in order.
func (c *Connector) dial(ctx context.Context) (net.Conn, string, error) {
	var errs []error
	for _, address := range c.addresses {
		conn, err := c.dialer.DialContext(ctx, "tcp", address)
		if err == nil {
			return conn, address, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, "", fmt.Errorf("dialing tooling: %w", errors.Join(errs...))
}

func (c *Connector) setClient(client *protocol.ToolingClient) {
	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
}
