// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hotpreview/hotpreview/lib/registry"
	"github.com/hotpreview/hotpreview/lib/rpc"
	"github.com/hotpreview/hotpreview/lib/testutil"
)

func sampleAppInfo() *AppInfo {
	return &AppInfo{
		Components: []ComponentInfo{
			{
				Name:     "Shop.Views.CartPage",
				BaseType: "UI.Page",
				Category: "Checkout",
				Previews: []PreviewInfo{{Name: "Empty"}, {Name: "Full", DisplayName: "Full cart"}},
			},
			{
				Name:        "Shop.Controls.PriceTag",
				Kind:        "control",
				DisplayName: "Price",
				Previews:    []PreviewInfo{{Name: "Default"}},
			},
		},
		Commands:   []CommandInfo{{Name: "Shop.ClearCart", DisplayName: "Clear cart"}},
		Categories: []CategoryInfo{{Name: "Checkout"}},
		BaseTypes:  []BaseTypeInfo{{Name: "UI.Page", Kind: "page"}},
	}
}

func TestAppInfoSnapshot(t *testing.T) {
	snapshot, err := sampleAppInfo().Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	cart, ok := snapshot.Component("Shop.Views.CartPage")
	if !ok {
		t.Fatal("CartPage missing")
	}
	if cart.Kind() != registry.KindPage {
		t.Errorf("CartPage kind = %v, want page from base type", cart.Kind())
	}
	if !snapshot.HasPreview("Shop.Views.CartPage", "Full") {
		t.Error("CartPage/Full missing")
	}
	if preview, _ := cart.Preview("Full"); preview.DisplayName() != "Full cart" {
		t.Errorf("Full display name = %q", preview.DisplayName())
	}
	checkout, _ := snapshot.Category("Checkout")
	if diff := cmp.Diff([]string{"Shop.Views.CartPage"}, checkout.ComponentNames()); diff != "" {
		t.Errorf("Checkout members mismatch (-want +got):\n%s", diff)
	}
	if command, ok := snapshot.Command("Shop.ClearCart"); !ok || command.DisplayName() != "Clear cart" {
		t.Errorf("ClearCart = %+v, %v", command, ok)
	}

	// Converting back keeps the resolved kind and drops the hints.
	roundTrip := NewAppInfo(snapshot)
	want := sampleAppInfo()
	want.Components[0].Kind = "page"
	want.Components[0].Category = "Checkout"
	want.Components[0], want.Components[1] = want.Components[1], want.Components[0]
	want.Categories[0].Components = []string{"Shop.Views.CartPage"}
	want.BaseTypes = nil
	if diff := cmp.Diff(want, roundTrip); diff != "" {
		t.Errorf("NewAppInfo mismatch (-want +got):\n%s", diff)
	}
}

func TestAppInfoSnapshotErrors(t *testing.T) {
	tests := map[string]*AppInfo{
		"bad kind":            {Components: []ComponentInfo{{Name: "A", Kind: "window"}}},
		"bad base type kind":  {BaseTypes: []BaseTypeInfo{{Name: "X", Kind: "gadget"}}},
		"duplicate component": {Components: []ComponentInfo{{Name: "A"}, {Name: "A"}}},
		"duplicate preview":   {Components: []ComponentInfo{{Name: "A", Previews: []PreviewInfo{{Name: "P"}, {Name: "P"}}}}},
		"undeclared category": {Components: []ComponentInfo{{Name: "A", Category: "Nowhere"}}},
		"duplicate command":   {Commands: []CommandInfo{{Name: "C"}, {Name: "C"}}},
	}
	for name, info := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := info.Snapshot(); err == nil {
				t.Error("Snapshot succeeded, want error")
			}
		})
	}
}

// fakeApp is an in-memory AppService.
type fakeApp struct {
	info      *AppInfo
	navigated chan PreviewParams
	invoked   chan string
}

func (a *fakeApp) GetAppInfo(ctx context.Context) (*AppInfo, error) { return a.info, nil }

func (a *fakeApp) GetComponent(ctx context.Context, name string) (*ComponentInfo, error) {
	for i := range a.info.Components {
		if a.info.Components[i].Name == name {
			return &a.info.Components[i], nil
		}
	}
	return nil, nil
}

func (a *fakeApp) NavigateToPreview(ctx context.Context, component, preview string) error {
	a.navigated <- PreviewParams{Component: component, Preview: preview}
	return nil
}

func (a *fakeApp) GetPreviewSnapshot(ctx context.Context, component, preview string) ([]byte, error) {
	if component != "Shop.Controls.PriceTag" {
		return nil, rpc.Errorf(rpc.CodeNotFound, "no component %q", component)
	}
	return []byte("\x89PNG" + preview), nil
}

func (a *fakeApp) GetCommand(ctx context.Context, name string) (*CommandInfo, error) {
	for i := range a.info.Commands {
		if a.info.Commands[i].Name == name {
			return &a.info.Commands[i], nil
		}
	}
	return nil, nil
}

func (a *fakeApp) InvokeCommand(ctx context.Context, name string) error {
	a.invoked <- name
	return nil
}

// fakeTooling is an in-memory ToolingService.
type fakeTooling struct {
	registered chan RegisterAppParams
	changed    chan struct{}
}

func (s *fakeTooling) RegisterApp(ctx context.Context, params RegisterAppParams) error {
	s.registered <- params
	return nil
}

func (s *fakeTooling) ComponentsChanged(ctx context.Context) error {
	s.changed <- struct{}{}
	return nil
}

func (s *fakeTooling) GetToolingInfo(ctx context.Context) (*ToolingInfo, error) {
	return &ToolingInfo{ProtocolVersion: ProtocolVersion, AppConnectionString: "127.0.0.1:54242"}, nil
}

func connectPeers(t *testing.T, app AppService, tooling ToolingService) (*AppClient, *ToolingClient) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appStream, toolingStream := net.Pipe()
	appConn := rpc.NewConn(appStream, logger)
	toolingConn := rpc.NewConn(toolingStream, logger)
	ServeApp(appConn, app)
	ServeTooling(toolingConn, tooling)

	ctx, cancel := context.WithCancel(context.Background())
	go appConn.Serve(ctx)
	go toolingConn.Serve(ctx)
	t.Cleanup(func() {
		cancel()
		testutil.RequireClosed(t, appConn.Done(), 5*time.Second, "app conn shutdown")
		testutil.RequireClosed(t, toolingConn.Done(), 5*time.Second, "tooling conn shutdown")
	})
	return NewAppClient(toolingConn), NewToolingClient(appConn)
}

func TestAppClient(t *testing.T) {
	app := &fakeApp{info: sampleAppInfo(), navigated: make(chan PreviewParams, 1), invoked: make(chan string, 1)}
	client, _ := connectPeers(t, app, &fakeTooling{})
	ctx := context.Background()

	info, err := client.GetAppInfo(ctx)
	if err != nil {
		t.Fatalf("GetAppInfo: %v", err)
	}
	if diff := cmp.Diff(sampleAppInfo(), info); diff != "" {
		t.Errorf("GetAppInfo mismatch (-want +got):\n%s", diff)
	}

	component, err := client.GetComponent(ctx, "Shop.Controls.PriceTag")
	if err != nil || component == nil || component.DisplayName != "Price" {
		t.Errorf("GetComponent(PriceTag) = %+v, %v", component, err)
	}
	if component, err := client.GetComponent(ctx, "Shop.Missing"); err != nil || component != nil {
		t.Errorf("GetComponent(missing) = %+v, %v; want nil, nil", component, err)
	}
	if command, err := client.GetCommand(ctx, "Shop.Missing"); err != nil || command != nil {
		t.Errorf("GetCommand(missing) = %+v, %v; want nil, nil", command, err)
	}

	if err := client.NavigateToPreview(ctx, "Shop.Views.CartPage", "Empty"); err != nil {
		t.Fatalf("NavigateToPreview: %v", err)
	}
	got := testutil.RequireReceive(t, app.navigated, 5*time.Second, "navigate")
	if got != (PreviewParams{Component: "Shop.Views.CartPage", Preview: "Empty"}) {
		t.Errorf("navigated to %+v", got)
	}

	image, err := client.GetPreviewSnapshot(ctx, "Shop.Controls.PriceTag", "Default")
	if err != nil {
		t.Fatalf("GetPreviewSnapshot: %v", err)
	}
	if !bytes.Equal(image, []byte("\x89PNGDefault")) {
		t.Errorf("image = %q", image)
	}
	if _, err := client.GetPreviewSnapshot(ctx, "Shop.Missing", "Default"); !rpc.IsCode(err, rpc.CodeNotFound) {
		t.Errorf("GetPreviewSnapshot(missing) error = %v, want not_found", err)
	}

	if err := client.InvokeCommand(ctx, "Shop.ClearCart"); err != nil {
		t.Fatalf("InvokeCommand: %v", err)
	}
	if name := testutil.RequireReceive(t, app.invoked, 5*time.Second, "invoke"); name != "Shop.ClearCart" {
		t.Errorf("invoked %q", name)
	}
}

func TestToolingClient(t *testing.T) {
	tooling := &fakeTooling{registered: make(chan RegisterAppParams, 1), changed: make(chan struct{}, 1)}
	_, client := connectPeers(t, &fakeApp{info: &AppInfo{}}, tooling)
	ctx := context.Background()

	if err := client.RegisterApp(ctx, "/src/shop/Shop.csproj", "android"); err != nil {
		t.Fatalf("RegisterApp: %v", err)
	}
	params := testutil.RequireReceive(t, tooling.registered, 5*time.Second, "register")
	if params != (RegisterAppParams{ProjectPath: "/src/shop/Shop.csproj", PlatformName: "android"}) {
		t.Errorf("registered %+v", params)
	}
	if err := client.RegisterApp(ctx, "", "android"); !rpc.IsCode(err, rpc.CodeInvalidParams) {
		t.Errorf("RegisterApp without project error = %v, want invalid_params", err)
	}

	if err := client.NotifyComponentsChanged(ctx); err != nil {
		t.Fatalf("NotifyComponentsChanged: %v", err)
	}
	testutil.RequireReceive(t, tooling.changed, 5*time.Second, "components changed")

	info, err := client.GetToolingInfo(ctx)
	if err != nil {
		t.Fatalf("GetToolingInfo: %v", err)
	}
	if info.ProtocolVersion != ProtocolVersion {
		t.Errorf("ProtocolVersion = %d, want %d", info.ProtocolVersion, ProtocolVersion)
	}
}

// imageCaller answers previews/snapshot with a fixed image size.
type imageCaller struct {
	size int
}

func (c imageCaller) Call(ctx context.Context, method string, params, result any) error {
	result.(*SnapshotResult).Image = make([]byte, c.size)
	return nil
}

func (c imageCaller) Notify(ctx context.Context, method string, params any) error { return nil }

func TestGetPreviewSnapshotSizeLimit(t *testing.T) {
	ctx := context.Background()

	image, err := NewAppClient(imageCaller{size: MaxSnapshotSize}).GetPreviewSnapshot(ctx, "Shop.PriceTag", "Default")
	if err != nil || len(image) != MaxSnapshotSize {
		t.Fatalf("image at the limit: len %d, err %v", len(image), err)
	}

	image, err = NewAppClient(imageCaller{size: MaxSnapshotSize + 1}).GetPreviewSnapshot(ctx, "Shop.PriceTag", "Default")
	if !errors.Is(err, ErrSnapshotTooLarge) {
		t.Fatalf("oversized image error = %v, want ErrSnapshotTooLarge", err)
	}
	if image != nil {
		t.Errorf("oversized image returned %d bytes", len(image))
	}
}
