// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/hotpreview/hotpreview/lib/appcatalog"
	"github.com/hotpreview/hotpreview/lib/cli"
	"github.com/hotpreview/hotpreview/lib/connector"
	"github.com/hotpreview/hotpreview/lib/protocol"
	"github.com/hotpreview/hotpreview/lib/registry"
)

type params struct {
	catalogPath string
	connect     string
	project     string
	platform    string
	verbose     bool
}

func command() *cli.Command {
	var p params
	return &cli.Command{
		Name:    "hotpreview-demoapp",
		Summary: "Serve a YAML component catalog to the tooling process",
		Usage:   "hotpreview-demoapp --catalog <file> --project <path> [flags]",
		Examples: []cli.Example{
			{
				Description: "Pretend to be the Android build of the shop app",
				Command:     "hotpreview-demoapp --catalog shop.yaml --project ~/src/Shop/Shop.csproj --platform android",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("hotpreview-demoapp", pflag.ContinueOnError)
			flagSet.StringVar(&p.catalogPath, "catalog", "", "YAML catalog file (required)")
			flagSet.StringVar(&p.connect, "connect", protocol.DefaultAddress, "tooling connection string, host:port or host1,host2:port")
			flagSet.StringVar(&p.project, "project", "", "project path to register as (required)")
			flagSet.StringVar(&p.platform, "platform", runtime.GOOS, "platform name to register as")
			flagSet.BoolVarP(&p.verbose, "verbose", "v", false, "log at debug level")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if p.catalogPath == "" || p.project == "" {
				return errors.New("--catalog and --project are required")
			}
			level := slog.LevelInfo
			if p.verbose {
				level = slog.LevelDebug
			}
			logger := cli.NewCommandLogger(level).With("command", "demoapp", "platform", p.platform)
			return runApp(ctx, p, logger)
		},
	}
}

// demoApp is the running app: a reloadable catalog behind an
// appcatalog.Host.
type demoApp struct {
	catalogPath string
	catalog     *appcatalog.Catalog
	host        *appcatalog.Host
	logger      *slog.Logger
}

func newDemoApp(catalogPath string, logger *slog.Logger) (*demoApp, error) {
	snapshot, err := appcatalog.LoadFile(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	catalog := appcatalog.NewCatalog(snapshot)
	app := &demoApp{
		catalogPath: catalogPath,
		catalog:     catalog,
		logger:      logger,
	}
	app.host = appcatalog.NewHost(appcatalog.HostConfig{
		Source:    catalog,
		Navigator: app,
		Renderer:  placeholderRenderer{},
		Logger:    logger,
	})
	return app, nil
}

// Navigate stands in for showing the preview on screen.
func (a *demoApp) Navigate(ctx context.Context, component *registry.UIComponent, preview registry.Preview) error {
	a.logger.Info("showing preview", "component", component.DisplayName(), "preview", preview.DisplayName())
	return nil
}

// reload rereads the catalog file. A catalog that fails to load leaves
// the current one in place.
func (a *demoApp) reload() error {
	snapshot, err := appcatalog.LoadFile(a.catalogPath)
	if err != nil {
		return err
	}
	a.catalog.Store(snapshot)
	a.logger.Info("catalog reloaded", "components", snapshot.ComponentCount(), "commands", snapshot.CommandCount())
	return nil
}

func runApp(ctx context.Context, p params, logger *slog.Logger) error {
	app, err := newDemoApp(p.catalogPath, logger)
	if err != nil {
		return err
	}
	project, err := filepath.Abs(p.project)
	if err != nil {
		return fmt.Errorf("resolving project path: %w", err)
	}

	conn, err := connector.New(connector.Config{
		ConnectionString: p.connect,
		ProjectPath:      project,
		PlatformName:     p.platform,
		App:              app.host,
		Logger:           logger,
	})
	if err != nil {
		return err
	}

	hangup := make(chan os.Signal, 1)
	signal.Notify(hangup, syscall.SIGHUP)
	defer signal.Stop(hangup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hangup:
				if err := app.reload(); err != nil {
					logger.Error("catalog reload failed", "error", err)
					continue
				}
				if err := conn.NotifyComponentsChanged(ctx); err != nil {
					logger.Warn("could not announce catalog change", "error", err)
				}
			}
		}
	}()

	logger.Info("demo app running", "project", project, "connect", p.connect)
	if err := conn.Run(ctx); err != nil {
		return err
	}
	if ctx.Err() == nil {
		logger.Warn("stopped trying to reach the tooling process; running disconnected")
		<-ctx.Done()
	}
	return nil
}
