// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package connector

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/hotpreview/hotpreview/lib/clock"
	"github.com/hotpreview/hotpreview/lib/protocol"
	"github.com/hotpreview/hotpreview/lib/rpc"
	"github.com/hotpreview/hotpreview/lib/testutil"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// dialFunc adapts a function to Dialer.
type dialFunc func(ctx context.Context, network, address string) (net.Conn, error)

func (f dialFunc) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return f(ctx, network, address)
}

// emptyApp serves an empty catalog.
type emptyApp struct{}

func (emptyApp) GetAppInfo(context.Context) (*protocol.AppInfo, error) {
	return &protocol.AppInfo{}, nil
}

func (emptyApp) GetComponent(context.Context, string) (*protocol.ComponentInfo, error) {
	return nil, nil
}

func (emptyApp) NavigateToPreview(context.Context, string, string) error {
	return nil
}

func (emptyApp) GetPreviewSnapshot(context.Context, string, string) ([]byte, error) {
	return nil, rpc.Errorf(rpc.CodeNotFound, "no previews")
}

func (emptyApp) GetCommand(context.Context, string) (*protocol.CommandInfo, error) {
	return nil, nil
}

func (emptyApp) InvokeCommand(context.Context, string) error {
	return nil
}

func newTestConnector(t *testing.T, connectionString string, dialer Dialer, clk clock.Clock) *Connector {
	t.Helper()
	connector, err := New(Config{
		ConnectionString: connectionString,
		ProjectPath:      "/src/shop/Shop.csproj",
		PlatformName:     "android",
		App:              emptyApp{},
		Logger:           testLogger(),
		Dialer:           dialer,
		Clock:            clk,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return connector
}

func TestRetryPolicyDelay(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		delay   time.Duration
		ok      bool
	}{
		{0, time.Second, true},
		{4999 * time.Millisecond, time.Second, true},
		{5 * time.Second, 2 * time.Second, true},
		{19 * time.Second, 2 * time.Second, true},
		{20 * time.Second, 4 * time.Second, true},
		{59 * time.Second, 4 * time.Second, true},
		{60 * time.Second, 0, false},
		{10 * time.Minute, 0, false},
	}
	for _, test := range tests {
		delay, ok := DefaultRetryPolicy.Delay(test.elapsed)
		if delay != test.delay || ok != test.ok {
			t.Errorf("Delay(%v) = %v, %v; want %v, %v", test.elapsed, delay, ok, test.delay, test.ok)
		}
	}
}

func TestNewValidates(t *testing.T) {
	valid := Config{
		ConnectionString: "127.0.0.1:54242",
		ProjectPath:      "/src/shop/Shop.csproj",
		App:              emptyApp{},
		Logger:           testLogger(),
	}
	if _, err := New(valid); err != nil {
		t.Fatalf("New(valid): %v", err)
	}

	for name, mutate := range map[string]func(*Config){
		"no port":    func(c *Config) { c.ConnectionString = "127.0.0.1" },
		"no project": func(c *Config) { c.ProjectPath = "" },
		"no app":     func(c *Config) { c.App = nil },
		"no logger":  func(c *Config) { c.Logger = nil },
	} {
		config := valid
		mutate(&config)
		if _, err := New(config); err == nil {
			t.Errorf("New(%s) succeeded, want error", name)
		}
	}
}

func TestRetrySpacingAndGiveUp(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	clk := clock.Fake(epoch)
	attempts := make(chan time.Duration)
	dialer := dialFunc(func(ctx context.Context, network, address string) (net.Conn, error) {
		attempts <- clk.Now().Sub(epoch)
		return nil, errors.New("connection refused")
	})
	connector := newTestConnector(t, "127.0.0.1:54242", dialer, clk)

	done := make(chan error, 1)
	go func() { done <- connector.Run(context.Background()) }()

	var want []time.Duration
	for _, second := range []int{0, 1, 2, 3, 4, 5, 7, 9, 11, 13, 15, 17, 19, 21, 25, 29, 33, 37, 41, 45, 49, 53, 57} {
		want = append(want, time.Duration(second)*time.Second)
	}

	for i, expected := range want {
		got := testutil.RequireReceive(t, attempts, 5*time.Second, "attempt %d", i)
		if got != expected {
			t.Fatalf("attempt %d at %v, want %v", i, got, expected)
		}
		clk.WaitForTimers(1)
		next := 61 * time.Second
		if i+1 < len(want) {
			next = want[i+1]
		}
		clk.Advance(next - expected)
	}

	if err := testutil.RequireReceive(t, done, 5*time.Second, "give up"); err != nil {
		t.Errorf("Run = %v, want nil after giving up", err)
	}
}

func TestRunCancelDuringBackoff(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	clk := clock.Fake(epoch)
	attempts := make(chan struct{}, 1)
	dialer := dialFunc(func(ctx context.Context, network, address string) (net.Conn, error) {
		attempts <- struct{}{}
		return nil, errors.New("connection refused")
	})
	connector := newTestConnector(t, "127.0.0.1:54242", dialer, clk)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- connector.Run(ctx) }()

	testutil.RequireReceive(t, attempts, 5*time.Second, "first attempt")
	clk.WaitForTimers(1)
	cancel()
	if err := testutil.RequireReceive(t, done, 5*time.Second, "run exit"); err != nil {
		t.Errorf("Run = %v, want nil on cancel", err)
	}
}

func TestDialTriesCandidatesInOrder(t *testing.T) {
	clk := clock.Fake(epoch)
	addresses := make(chan string, 8)
	dialer := dialFunc(func(ctx context.Context, network, address string) (net.Conn, error) {
		addresses <- address
		return nil, errors.New("unreachable")
	})
	connector := newTestConnector(t, "192.168.1.4,10.0.2.2:54242", dialer, clk)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- connector.Run(ctx) }()

	if got := testutil.RequireReceive(t, addresses, 5*time.Second, "first candidate"); got != "192.168.1.4:54242" {
		t.Errorf("first dial = %q", got)
	}
	if got := testutil.RequireReceive(t, addresses, 5*time.Second, "second candidate"); got != "10.0.2.2:54242" {
		t.Errorf("second dial = %q", got)
	}
	clk.WaitForTimers(1)
	cancel()
	testutil.RequireReceive(t, done, 5*time.Second, "run exit")
}

// fakeTooling records what the app sends.
type fakeTooling struct {
	registered chan protocol.RegisterAppParams
	changed    chan struct{}
}

func (f *fakeTooling) RegisterApp(ctx context.Context, params protocol.RegisterAppParams) error {
	f.registered <- params
	return nil
}

func (f *fakeTooling) ComponentsChanged(ctx context.Context) error {
	f.changed <- struct{}{}
	return nil
}

func (f *fakeTooling) GetToolingInfo(ctx context.Context) (*protocol.ToolingInfo, error) {
	return &protocol.ToolingInfo{ProtocolVersion: protocol.ProtocolVersion}, nil
}

func TestConnectRegisterAndReconnect(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	clk := clock.Fake(epoch)
	tooling := &fakeTooling{
		registered: make(chan protocol.RegisterAppParams, 4),
		changed:    make(chan struct{}, 4),
	}
	toolingConns := make(chan *rpc.Conn, 4)
	dialer := dialFunc(func(ctx context.Context, network, address string) (net.Conn, error) {
		appSide, toolingSide := net.Pipe()
		conn := rpc.NewConn(toolingSide, testLogger())
		protocol.ServeTooling(conn, tooling)
		go conn.Serve(context.Background())
		toolingConns <- conn
		return appSide, nil
	})
	connector := newTestConnector(t, "127.0.0.1:54242", dialer, clk)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- connector.Run(ctx) }()

	first := testutil.RequireReceive(t, toolingConns, 5*time.Second, "first connection")
	params := testutil.RequireReceive(t, tooling.registered, 5*time.Second, "registration")
	if params != (protocol.RegisterAppParams{ProjectPath: "/src/shop/Shop.csproj", PlatformName: "android"}) {
		t.Errorf("registered %+v", params)
	}

	waitConnected(t, connector, true)
	if err := connector.NotifyComponentsChanged(ctx); err != nil {
		t.Fatalf("NotifyComponentsChanged: %v", err)
	}
	testutil.RequireReceive(t, tooling.changed, 5*time.Second, "components changed")

	// The tooling process drops the connection; the connector waits one
	// second and reconnects.
	first.Close()
	testutil.RequireClosed(t, first.Done(), 5*time.Second, "first connection closed")
	clk.WaitForTimers(1)
	waitConnected(t, connector, false)
	if err := connector.NotifyComponentsChanged(ctx); !errors.Is(err, ErrNotConnected) {
		t.Errorf("NotifyComponentsChanged while disconnected = %v, want ErrNotConnected", err)
	}
	clk.Advance(time.Second)

	second := testutil.RequireReceive(t, toolingConns, 5*time.Second, "second connection")
	testutil.RequireReceive(t, tooling.registered, 5*time.Second, "re-registration")

	cancel()
	if err := testutil.RequireReceive(t, done, 5*time.Second, "run exit"); err != nil {
		t.Errorf("Run = %v, want nil on cancel", err)
	}
	testutil.RequireClosed(t, second.Done(), 5*time.Second, "cancel releases the transport")
}

func waitConnected(t *testing.T, connector *Connector, want bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for connector.Connected() != want {
		if time.Now().After(deadline) {
			t.Fatalf("Connected() never became %v", want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
