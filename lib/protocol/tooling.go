// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"context"

	"github.com/hotpreview/hotpreview/lib/codec"
	"github.com/hotpreview/hotpreview/lib/rpc"
)

// ToolingService is the surface the tooling process exposes to each
// connected app.
type ToolingService interface {
	RegisterApp(ctx context.Context, params RegisterAppParams) error
	ComponentsChanged(ctx context.Context) error
	GetToolingInfo(ctx context.Context) (*ToolingInfo, error)
}

// ServeTooling registers the tooling-side methods on conn. Call before
// conn.Serve.
func ServeTooling(conn *rpc.Conn, service ToolingService) {
	conn.Handle(MethodRegisterApp, func(ctx context.Context, raw codec.RawMessage) (any, error) {
		var params RegisterAppParams
		if err := rpc.DecodeParams(raw, &params); err != nil {
			return nil, err
		}
		if params.ProjectPath == "" {
			return nil, rpc.Errorf(rpc.CodeInvalidParams, "projectPath is required")
		}
		return nil, service.RegisterApp(ctx, params)
	})
	conn.Handle(MethodComponentsChanged, func(ctx context.Context, _ codec.RawMessage) (any, error) {
		return nil, service.ComponentsChanged(ctx)
	})
	conn.Handle(MethodGetToolingInfo, func(ctx context.Context, _ codec.RawMessage) (any, error) {
		return service.GetToolingInfo(ctx)
	})
}

// ToolingClient is the app side's proxy for the tooling process.
type ToolingClient struct {
	caller Caller
}

// NewToolingClient wraps a connection to the tooling process.
func NewToolingClient(caller Caller) *ToolingClient {
	return &ToolingClient{caller: caller}
}

// RegisterApp announces this app instance. The tooling process fetches
// the catalog before replying.
func (c *ToolingClient) RegisterApp(ctx context.Context, projectPath, platformName string) error {
	return c.caller.Call(ctx, MethodRegisterApp, RegisterAppParams{
		ProjectPath:  projectPath,
		PlatformName: platformName,
	}, nil)
}

// NotifyComponentsChanged tells the tooling process to refetch the
// catalog.
func (c *ToolingClient) NotifyComponentsChanged(ctx context.Context) error {
	return c.caller.Notify(ctx, MethodComponentsChanged, nil)
}

// GetToolingInfo asks the tooling process for its protocol version.
func (c *ToolingClient) GetToolingInfo(ctx context.Context) (*ToolingInfo, error) {
	var info ToolingInfo
	if err := c.caller.Call(ctx, MethodGetToolingInfo, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
