// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hotpreview/hotpreview/lib/protocol"
	"github.com/hotpreview/hotpreview/lib/tooling"
)

// APIError is a failed automation request.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Snapshots  []tooling.CapturedSnapshot
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// Client talks to the automation API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API at baseURL
// (e.g. "http://127.0.0.1:54243"). A nil httpClient uses
// http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// Apps lists the apps in the directory.
func (c *Client) Apps(ctx context.Context) ([]AppView, error) {
	var apps []AppView
	return apps, c.do(ctx, http.MethodGet, "/apps", nil, &apps)
}

// Components lists project's categorized components.
func (c *Client) Components(ctx context.Context, project string) ([]CategoryView, error) {
	var categories []CategoryView
	return categories, c.do(ctx, http.MethodGet, "/apps/components?project="+url.QueryEscape(project), nil, &categories)
}

// Commands lists project's commands.
func (c *Client) Commands(ctx context.Context, project string) ([]CommandView, error) {
	var commands []CommandView
	return commands, c.do(ctx, http.MethodGet, "/apps/commands?project="+url.QueryEscape(project), nil, &commands)
}

// Navigate shows a preview.
func (c *Client) Navigate(ctx context.Context, request NavigateRequest) error {
	return c.do(ctx, http.MethodPost, "/apps/navigate", request, nil)
}

// InvokeCommand runs a command.
func (c *Client) InvokeCommand(ctx context.Context, request InvokeRequest) error {
	return c.do(ctx, http.MethodPost, "/apps/commands/invoke", request, nil)
}

// CaptureSnapshots captures preview images.
func (c *Client) CaptureSnapshots(ctx context.Context, request SnapshotRequest) ([]tooling.CapturedSnapshot, error) {
	var response SnapshotResponse
	err := c.do(ctx, http.MethodPost, "/apps/snapshots", request, &response)
	return response.Snapshots, err
}

// Pin pins or unpins an app.
func (c *Client) Pin(ctx context.Context, project string, pinned bool) (*AppView, error) {
	var app AppView
	if err := c.do(ctx, http.MethodPost, "/apps/pin", PinRequest{Project: project, Pinned: &pinned}, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// ToolingInfo returns the info the tooling advertises to apps.
func (c *Client) ToolingInfo(ctx context.Context) (*protocol.ToolingInfo, error) {
	var info protocol.ToolingInfo
	if err := c.do(ctx, http.MethodGet, "/tooling", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	if response.StatusCode >= 300 {
		var failure ErrorResponse
		apiErr := &APIError{StatusCode: response.StatusCode}
		if err := json.NewDecoder(response.Body).Decode(&failure); err == nil {
			apiErr.Code, apiErr.Message, apiErr.Snapshots = failure.Code, failure.Error, failure.Snapshots
		} else {
			apiErr.Message = response.Status
		}
		return apiErr
	}

	if result == nil || response.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
