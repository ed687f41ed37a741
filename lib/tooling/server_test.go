// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package tooling

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	prometheustest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/hotpreview/hotpreview/lib/protocol"
	"github.com/hotpreview/hotpreview/lib/rpc"
	"github.com/hotpreview/hotpreview/lib/testutil"
)

// startServer runs a Server on a loopback port until the test ends.
func startServer(t *testing.T, directory *Directory, metrics *Metrics) *Server {
	t.Helper()
	server := NewServer(ServerConfig{
		Address:             "127.0.0.1:0",
		AppConnectionString: "127.0.0.1:54242",
		Directory:           directory,
		Logger:              testLogger(),
		Metrics:             metrics,
	})
	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(ctx) }()
	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "server ready")
	t.Cleanup(func() {
		cancel()
		if err := testutil.RequireReceive(t, serveErr, 5*time.Second, "server shutdown"); err != nil {
			t.Errorf("Serve: %v", err)
		}
	})
	return server
}

// connectApp dials the server as an app serving remote's catalog.
func connectApp(t *testing.T, server *Server, remote *fakeRemote) (*rpc.Conn, *protocol.ToolingClient) {
	t.Helper()
	netConn, err := net.Dial("tcp", server.Addr().String())
	if err != nil {
		t.Fatalf("dialing tooling server: %v", err)
	}
	conn := rpc.NewConn(netConn, testLogger())
	protocol.ServeApp(conn, remote)
	go conn.Serve(context.Background())
	t.Cleanup(func() {
		conn.Close()
		testutil.RequireClosed(t, conn.Done(), 5*time.Second, "app conn shutdown")
	})
	return conn, protocol.NewToolingClient(conn)
}

func TestServerEndToEnd(t *testing.T) {
	metrics := NewMetrics(MetricsConfig{Registerer: prometheus.NewRegistry()})
	directory := newTestDirectory(t, func(config *DirectoryConfig) { config.Metrics = metrics })
	server := startServer(t, directory, metrics)

	remote := newFakeRemote("ios", catalog(map[string][]string{"Shop.Button": {"Default"}}, "Shop.Reset"))
	conn, client := connectApp(t, server, remote)
	ctx := context.Background()

	info, err := client.GetToolingInfo(ctx)
	if err != nil {
		t.Fatalf("GetToolingInfo: %v", err)
	}
	if info.ProtocolVersion != protocol.ProtocolVersion || info.AppConnectionString != "127.0.0.1:54242" {
		t.Errorf("tooling info = %+v", info)
	}

	if err := client.RegisterApp(ctx, project, "ios"); err != nil {
		t.Fatalf("RegisterApp: %v", err)
	}
	app, ok := directory.Lookup(project)
	if !ok {
		t.Fatal("registered app not in directory")
	}
	if !app.Snapshot().HasPreview("Shop.Button", "Default") {
		t.Error("app snapshot missing Shop.Button/Default")
	}
	sessions := app.Sessions()
	if len(sessions) != 1 || sessions[0].State() != StateRegistered || sessions[0].Platform() != "ios" {
		t.Fatalf("sessions = %+v", sessions)
	}

	// Calls flow back to the app over the same connection.
	if err := app.InvokeCommand(ctx, "Shop.Reset"); err != nil {
		t.Fatalf("InvokeCommand: %v", err)
	}
	testutil.RequireReceive(t, remote.invoked, 5*time.Second, "command reached the app")

	remote.setInfo(catalog(map[string][]string{"Shop.Button": {"Default"}, "Shop.Slider": {"Default"}}))
	if err := client.NotifyComponentsChanged(ctx); err != nil {
		t.Fatalf("NotifyComponentsChanged: %v", err)
	}
	waitFor(t, 5*time.Second, "snapshot refresh", func() bool {
		return app.Snapshot().ComponentCount() == 2
	})

	if got := prometheustest.ToFloat64(metrics.activeSessions); got != 1 {
		t.Errorf("active sessions = %v, want 1", got)
	}

	// Disconnecting the app removes the session and, unpinned, the app.
	conn.Close()
	waitFor(t, 5*time.Second, "app removal", func() bool {
		_, ok := directory.Lookup(project)
		return !ok
	})
	if sessions[0].State() != StateClosed {
		t.Errorf("session state = %v, want closed", sessions[0].State())
	}
	waitFor(t, 5*time.Second, "session gauge", func() bool {
		return prometheustest.ToFloat64(metrics.activeSessions) == 0
	})
}

func TestServerShutdownClosesSessions(t *testing.T) {
	directory := newTestDirectory(t)
	directory.Pin(project)
	server := NewServer(ServerConfig{Address: "127.0.0.1:0", Directory: directory, Logger: testLogger()})
	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(ctx) }()
	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "server ready")

	conn, client := connectApp(t, server, newFakeRemote("ios", catalog(nil)))
	if err := client.RegisterApp(context.Background(), project, "ios"); err != nil {
		t.Fatalf("RegisterApp: %v", err)
	}

	cancel()
	if err := testutil.RequireReceive(t, serveErr, 5*time.Second, "server shutdown"); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	testutil.RequireClosed(t, conn.Done(), 5*time.Second, "app side sees the disconnect")

	app, _ := directory.Lookup(project)
	if len(app.Sessions()) != 0 {
		t.Errorf("pinned app still has %d sessions after shutdown", len(app.Sessions()))
	}
}

func TestServerBindFailure(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer occupied.Close()

	server := NewServer(ServerConfig{
		Address:   occupied.Addr().String(),
		Directory: newTestDirectory(t),
		Logger:    testLogger(),
	})
	if err := server.Serve(context.Background()); err == nil {
		t.Fatal("Serve succeeded on an occupied port")
	}
}
