// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package automation

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hotpreview/hotpreview/lib/protocol"
	"github.com/hotpreview/hotpreview/lib/registry"
	"github.com/hotpreview/hotpreview/lib/tooling"
)

// HandlerConfig configures the automation API.
type HandlerConfig struct {
	// Directory is the app directory the API operates on. Required.
	Directory *tooling.Directory

	// ToolingInfo is served at /tooling.
	ToolingInfo protocol.ToolingInfo

	// Status serves /status. When nil the route is not mounted.
	Status *StatusHub

	// Gatherer serves /metrics. When nil the route is not mounted.
	Gatherer prometheus.Gatherer

	// Logger is the structured logger. Required.
	Logger *slog.Logger
}

type api struct {
	directory   *tooling.Directory
	toolingInfo protocol.ToolingInfo
	logger      *slog.Logger
}

// NewHandler builds the automation router.
func NewHandler(config HandlerConfig) http.Handler {
	if config.Directory == nil {
		panic("automation: HandlerConfig.Directory is required")
	}
	if config.Logger == nil {
		panic("automation: HandlerConfig.Logger is required")
	}
	a := &api{
		directory:   config.Directory,
		toolingInfo: config.ToolingInfo,
		logger:      config.Logger,
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(a.logRequests)

	router.Get("/tooling", a.getTooling)
	router.Route("/apps", func(r chi.Router) {
		r.Get("/", a.listApps)
		r.Get("/components", a.listComponents)
		r.Get("/commands", a.listCommands)
		r.Post("/navigate", a.navigate)
		r.Post("/commands/invoke", a.invokeCommand)
		r.Post("/snapshots", a.captureSnapshots)
		r.Post("/pin", a.pin)
	})
	if config.Status != nil {
		router.Method(http.MethodGet, "/status", config.Status)
	}
	if config.Gatherer != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{}))
	}
	return router
}

func (a *api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(wrapped, r)
		a.logger.Debug("automation request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.Status(),
			"duration", time.Since(start),
		)
	})
}

func (a *api) getTooling(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.toolingInfo)
}

func (a *api) listApps(w http.ResponseWriter, r *http.Request) {
	apps := a.directory.Apps()
	views := make([]AppView, 0, len(apps))
	for _, app := range apps {
		views = append(views, newAppView(app))
	}
	writeJSON(w, http.StatusOK, views)
}

func (a *api) listComponents(w http.ResponseWriter, r *http.Request) {
	app, ok := a.lookupQuery(w, r)
	if !ok {
		return
	}
	snapshot := app.Snapshot()
	groups := snapshot.CategorizedComponents()
	views := make([]CategoryView, 0, len(groups))
	for _, group := range groups {
		view := CategoryView{Name: group.Category.Name(), Components: make([]ComponentView, 0, len(group.Components))}
		for _, component := range group.Components {
			view.Components = append(view.Components, newComponentView(snapshot, component))
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

func (a *api) listCommands(w http.ResponseWriter, r *http.Request) {
	app, ok := a.lookupQuery(w, r)
	if !ok {
		return
	}
	commands := app.Snapshot().Commands()
	views := make([]CommandView, 0, len(commands))
	for _, command := range commands {
		views = append(views, CommandView{Name: command.Name, DisplayName: command.DisplayName()})
	}
	writeJSON(w, http.StatusOK, views)
}

func (a *api) navigate(w http.ResponseWriter, r *http.Request) {
	var request NavigateRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if request.Component == "" || request.Preview == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "component and preview are required")
		return
	}
	app, ok := a.lookup(w, request.Project)
	if !ok {
		return
	}
	if err := app.Navigate(r.Context(), request.Component, request.Preview); err != nil {
		a.writeFailure(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) invokeCommand(w http.ResponseWriter, r *http.Request) {
	var request InvokeRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if request.Command == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "command is required")
		return
	}
	app, ok := a.lookup(w, request.Project)
	if !ok {
		return
	}
	if err := app.InvokeCommand(r.Context(), request.Command); err != nil {
		a.writeFailure(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) captureSnapshots(w http.ResponseWriter, r *http.Request) {
	var request SnapshotRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if request.Category != "" && request.Component != "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "category and component are mutually exclusive")
		return
	}
	if request.Preview != "" && request.Component == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "preview requires component")
		return
	}
	app, ok := a.lookup(w, request.Project)
	if !ok {
		return
	}

	var captured []tooling.CapturedSnapshot
	var err error
	if request.Category != "" {
		captured, err = app.CaptureCategorySnapshots(r.Context(), request.Category)
	} else {
		captured, err = app.CaptureSnapshots(r.Context(), request.Component, request.Preview)
	}
	if err != nil {
		a.writeFailure(w, err, captured)
		return
	}
	if captured == nil {
		captured = []tooling.CapturedSnapshot{}
	}
	writeJSON(w, http.StatusOK, SnapshotResponse{Snapshots: captured})
}

func (a *api) pin(w http.ResponseWriter, r *http.Request) {
	var request PinRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if request.Project == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "project is required")
		return
	}
	if request.Pinned == nil || *request.Pinned {
		app := a.directory.Pin(request.Project)
		a.logger.Info("app pinned", "project", app.ProjectPath())
		writeJSON(w, http.StatusOK, newAppView(app))
		return
	}
	app, ok := a.lookup(w, request.Project)
	if !ok {
		return
	}
	app.Unpin()
	a.logger.Info("app unpinned", "project", app.ProjectPath())
	writeJSON(w, http.StatusOK, newAppView(app))
}

func (a *api) lookupQuery(w http.ResponseWriter, r *http.Request) (*tooling.App, bool) {
	return a.lookup(w, r.URL.Query().Get("project"))
}

func (a *api) lookup(w http.ResponseWriter, projectPath string) (*tooling.App, bool) {
	if projectPath == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "project is required")
		return nil, false
	}
	app, ok := a.directory.Lookup(projectPath)
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, fmt.Sprintf("app %q not found", projectPath))
		return nil, false
	}
	return app, true
}

// writeFailure maps a dispatch error to its status code. Partial capture
// results ride along with the error.
func (a *api) writeFailure(w http.ResponseWriter, err error, captured []tooling.CapturedSnapshot) {
	status, code := http.StatusBadGateway, CodeFailed
	switch {
	case errors.Is(err, tooling.ErrNotFound):
		status, code = http.StatusNotFound, CodeNotFound
	case errors.Is(err, tooling.ErrNoSessions):
		status, code = http.StatusConflict, CodeNoSessions
	default:
		a.logger.Warn("automation request failed", "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code, Snapshots: captured})
}

func newAppView(app *tooling.App) AppView {
	snapshot := app.Snapshot()
	view := AppView{
		ProjectPath: app.ProjectPath(),
		Pinned:      app.Pinned(),
		Components:  snapshot.ComponentCount(),
		Commands:    snapshot.CommandCount(),
		Sessions:    []SessionView{},
	}
	for _, session := range app.Sessions() {
		view.Sessions = append(view.Sessions, SessionView{
			ID:         session.ID(),
			Platform:   session.Platform(),
			State:      session.State().String(),
			RemoteAddr: session.RemoteAddr(),
		})
	}
	return view
}

func newComponentView(snapshot *registry.Snapshot, component *registry.UIComponent) ComponentView {
	view := ComponentView{
		Name:        component.Name(),
		DisplayName: component.DisplayName(),
		Kind:        component.Kind().String(),
		ShortName:   snapshot.ComponentShortName(component.Name()),
		Previews:    make([]PreviewView, 0, component.PreviewCount()),
	}
	for _, preview := range component.Previews() {
		view.Previews = append(view.Previews, PreviewView{
			Name:        preview.Name,
			DisplayName: preview.DisplayName(),
			ShortName:   snapshot.PreviewShortName(component.Name(), preview.Name),
		})
	}
	return view
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
