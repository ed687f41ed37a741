// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"context"
	"fmt"

	"github.com/hotpreview/hotpreview/lib/codec"
	"github.com/hotpreview/hotpreview/lib/rpc"
)

// AppService is the surface an app process exposes to the tooling
// process. GetComponent and GetCommand return nil without error for
// unknown names.
type AppService interface {
	GetAppInfo(ctx context.Context) (*AppInfo, error)
	GetComponent(ctx context.Context, name string) (*ComponentInfo, error)
	NavigateToPreview(ctx context.Context, component, preview string) error
	GetPreviewSnapshot(ctx context.Context, component, preview string) ([]byte, error)
	GetCommand(ctx context.Context, name string) (*CommandInfo, error)
	InvokeCommand(ctx context.Context, name string) error
}

// ServeApp registers the app-side methods on conn. Call before
// conn.Serve.
func ServeApp(conn *rpc.Conn, service AppService) {
	conn.Handle(MethodGetAppInfo, func(ctx context.Context, _ codec.RawMessage) (any, error) {
		return service.GetAppInfo(ctx)
	})
	conn.Handle(MethodGetComponent, func(ctx context.Context, raw codec.RawMessage) (any, error) {
		var params NameParams
		if err := rpc.DecodeParams(raw, &params); err != nil {
			return nil, err
		}
		return service.GetComponent(ctx, params.Name)
	})
	conn.Handle(MethodNavigate, func(ctx context.Context, raw codec.RawMessage) (any, error) {
		var params PreviewParams
		if err := rpc.DecodeParams(raw, &params); err != nil {
			return nil, err
		}
		return nil, service.NavigateToPreview(ctx, params.Component, params.Preview)
	})
	conn.Handle(MethodGetSnapshot, func(ctx context.Context, raw codec.RawMessage) (any, error) {
		var params PreviewParams
		if err := rpc.DecodeParams(raw, &params); err != nil {
			return nil, err
		}
		image, err := service.GetPreviewSnapshot(ctx, params.Component, params.Preview)
		if err != nil {
			return nil, err
		}
		return SnapshotResult{Image: image}, nil
	})
	conn.Handle(MethodGetCommand, func(ctx context.Context, raw codec.RawMessage) (any, error) {
		var params NameParams
		if err := rpc.DecodeParams(raw, &params); err != nil {
			return nil, err
		}
		return service.GetCommand(ctx, params.Name)
	})
	conn.Handle(MethodInvokeCommand, func(ctx context.Context, raw codec.RawMessage) (any, error) {
		var params NameParams
		if err := rpc.DecodeParams(raw, &params); err != nil {
			return nil, err
		}
		return nil, service.InvokeCommand(ctx, params.Name)
	})
}

// AppClient is the tooling side's proxy for an app's AppService.
type AppClient struct {
	caller Caller
}

var _ AppService = (*AppClient)(nil)

// NewAppClient wraps a connection to an app process.
func NewAppClient(caller Caller) *AppClient {
	return &AppClient{caller: caller}
}

func (c *AppClient) GetAppInfo(ctx context.Context) (*AppInfo, error) {
	var info AppInfo
	if err := c.caller.Call(ctx, MethodGetAppInfo, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *AppClient) GetComponent(ctx context.Context, name string) (*ComponentInfo, error) {
	var info *ComponentInfo
	if err := c.caller.Call(ctx, MethodGetComponent, NameParams{Name: name}, &info); err != nil {
		return nil, err
	}
	return info, nil
}

func (c *AppClient) NavigateToPreview(ctx context.Context, component, preview string) error {
	return c.caller.Call(ctx, MethodNavigate, PreviewParams{Component: component, Preview: preview}, nil)
}

func (c *AppClient) GetPreviewSnapshot(ctx context.Context, component, preview string) ([]byte, error) {
	var result SnapshotResult
	if err := c.caller.Call(ctx, MethodGetSnapshot, PreviewParams{Component: component, Preview: preview}, &result); err != nil {
		return nil, err
	}
	if len(result.Image) > MaxSnapshotSize {
		return nil, fmt.Errorf("%s/%s: %d bytes: %w", component, preview, len(result.Image), ErrSnapshotTooLarge)
	}
	return result.Image, nil
}

func (c *AppClient) GetCommand(ctx context.Context, name string) (*CommandInfo, error) {
	var info *CommandInfo
	if err := c.caller.Call(ctx, MethodGetCommand, NameParams{Name: name}, &info); err != nil {
		return nil, err
	}
	return info, nil
}

func (c *AppClient) InvokeCommand(ctx context.Context, name string) error {
	return c.caller.Call(ctx, MethodInvokeCommand, NameParams{Name: name}, nil)
}
