// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hotpreview/hotpreview/lib/automation"
	"github.com/hotpreview/hotpreview/lib/config"
	"github.com/hotpreview/hotpreview/lib/testutil"
	"github.com/hotpreview/hotpreview/lib/tooling"
)

func startAPI(t *testing.T) (*tooling.Directory, string) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	directory := tooling.NewDirectory(tooling.DirectoryConfig{Logger: logger})
	server := httptest.NewServer(automation.NewHandler(automation.HandlerConfig{
		Directory: directory,
		Logger:    logger,
	}))
	t.Cleanup(server.Close)
	return directory, server.URL
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	command := root(&stdout)
	command.HelpOutput = io.Discard
	err := command.Execute(context.Background(), args)
	return stdout.String(), err
}

func TestPinAndApps(t *testing.T) {
	directory, url := startAPI(t)

	output, err := execute(t, "pin", "--server", url, "/src/Shop/Shop.csproj")
	if err != nil {
		t.Fatalf("pin: %v", err)
	}
	if strings.TrimSpace(output) != "pinned /src/Shop/Shop.csproj" {
		t.Errorf("pin output = %q", output)
	}
	if _, ok := directory.Lookup("/src/Shop/Shop.csproj"); !ok {
		t.Fatal("pinned app not in directory")
	}

	output, err = execute(t, "apps", "--server", url, "--json")
	if err != nil {
		t.Fatalf("apps: %v", err)
	}
	var apps []automation.AppView
	if err := json.Unmarshal([]byte(output), &apps); err != nil {
		t.Fatalf("decoding apps output %q: %v", output, err)
	}
	if len(apps) != 1 || !apps[0].Pinned || apps[0].ProjectPath != "/src/Shop/Shop.csproj" {
		t.Errorf("apps = %+v", apps)
	}

	output, err = execute(t, "apps", "--server", url)
	if err != nil {
		t.Fatalf("apps: %v", err)
	}
	if !strings.Contains(output, "PROJECT") || !strings.Contains(output, "/src/Shop/Shop.csproj") {
		t.Errorf("apps table = %q", output)
	}

	// With a single app, --project may be omitted.
	output, err = execute(t, "components", "--server", url, "--json")
	if err != nil {
		t.Fatalf("components: %v", err)
	}
	if strings.TrimSpace(output) != "[]" {
		t.Errorf("components of an app without sessions = %q, want []", output)
	}

	if _, err := execute(t, "pin", "--server", url, "--unpin", "/src/Shop/Shop.csproj"); err != nil {
		t.Fatalf("unpin: %v", err)
	}
	if _, ok := directory.Lookup("/src/Shop/Shop.csproj"); ok {
		t.Error("unpinned app without sessions still in directory")
	}
}

func TestClientErrors(t *testing.T) {
	_, url := startAPI(t)

	_, err := execute(t, "components", "--server", url)
	if err == nil || !strings.Contains(err.Error(), "no apps are connected") {
		t.Errorf("components with no apps = %v", err)
	}

	_, err = execute(t, "navigate", "--server", url, "--project", "/src/Missing.csproj", "A", "B")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("navigate on unknown app = %v", err)
	}

	_, err = execute(t, "navigate", "--server", url, "OnlyComponent")
	if err == nil || !strings.Contains(err.Error(), "usage:") {
		t.Errorf("navigate with one argument = %v", err)
	}

	_, err = execute(t, "snapshto")
	if err == nil || !strings.Contains(err.Error(), `did you mean "snapshot"`) {
		t.Errorf("misspelled command = %v", err)
	}
}

func TestVersion(t *testing.T) {
	output, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(output, "hotpreview ") {
		t.Errorf("version output = %q", output)
	}
}

func TestLoadServeConfig(t *testing.T) {
	t.Setenv(config.EnvVar, "")

	cfg, err := loadServeConfig(serveParams{listenAddress: "127.0.0.1:7000", noAutomation: true, logLevel: "debug"})
	if err != nil {
		t.Fatalf("loadServeConfig: %v", err)
	}
	if cfg.Listen.Address != "127.0.0.1:7000" || cfg.Automation.Enabled || cfg.Log.Level != "debug" {
		t.Errorf("config = %+v", cfg)
	}

	if _, err := loadServeConfig(serveParams{logLevel: "chatty"}); err == nil {
		t.Error("expected validation error for unknown log level")
	}
	if _, err := loadServeConfig(serveParams{configPath: "/nonexistent/hotpreview.yaml"}); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestServe(t *testing.T) {
	cfg := config.Default()
	cfg.Listen.Address = "127.0.0.1:0"
	cfg.Automation.Address = freeAddress(t)
	cfg.Log.Level = "error"
	cfg.PinnedProjects = []string{"/src/Pinned/Pinned.csproj"}

	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() { serveErr <- serve(ctx, cfg) }()

	client := automation.NewClient("http://"+cfg.Automation.Address, nil)
	var apps []automation.AppView
	deadline := time.Now().Add(5 * time.Second)
	for {
		var err error
		apps, err = client.Apps(ctx)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("automation API never came up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(apps) != 1 || apps[0].ProjectPath != "/src/Pinned/Pinned.csproj" || !apps[0].Pinned {
		t.Errorf("apps = %+v, want the pinned project", apps)
	}

	response, err := http.Get("http://" + cfg.Automation.Address + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(response.Body)
	response.Body.Close()
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("/metrics missing Go runtime collector output")
	}

	cancel()
	if err := testutil.RequireReceive(t, serveErr, 10*time.Second, "serve shutdown"); err != nil {
		t.Errorf("serve: %v", err)
	}
}

// freeAddress reserves a loopback port and releases it for the caller.
func freeAddress(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	address := listener.Addr().String()
	listener.Close()
	return address
}
